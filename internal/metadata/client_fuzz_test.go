package metadata

import (
	"strings"
	"testing"
)

func FuzzConvertToResult(f *testing.F) {
	f.Add("True", "tt1375666", "Inception", "2010", "Action, Sci-Fi", "N/A")
	f.Add("False", "", "", "", "", "")
	f.Add("True", "", "Big Little Lies", "2017–2019", "", "8.5")

	f.Fuzz(func(t *testing.T, response, id, title, year, genre, rating string) {
		result, err := convertToResult("tt0000001", apiResponse{
			Response:   response,
			IMDbID:     id,
			Title:      title,
			Year:       year,
			Genre:      genre,
			IMDbRating: rating,
		})
		if err != nil {
			return
		}
		if result.Title == "" {
			t.Fatalf("result without title: %+v", result)
		}
		if result.ExternalID == "" {
			t.Fatalf("empty external id")
		}
		if result.Year < 0 {
			t.Fatalf("negative year %d", result.Year)
		}
		if strings.EqualFold(result.Rating, "N/A") {
			t.Fatalf("placeholder leaked into rating")
		}
	})
}
