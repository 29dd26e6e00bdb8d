package websocket

import (
	"testing"

	"github.com/fortuna/ceres/internal/store"
)

func feedGame(year int, gender, division string) *store.Game {
	return &store.Game{
		ExternalID: "test_game",
		Year:       year,
		Gender:     gender,
		Division:   division,
	}
}

func TestFilterMatches(t *testing.T) {
	game := feedGame(2024, "Boys", "Div1")

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter matches everything", Filter{}, true},
		{"year matches", Filter{Years: []int{2023, 2024}}, true},
		{"year does not match", Filter{Years: []int{2023}}, false},
		{"gender matches case-insensitively", Filter{Genders: []string{"boys"}}, true},
		{"gender does not match", Filter{Genders: []string{"Girls"}}, false},
		{"division matches", Filter{Divisions: []string{"Div1", "Div2"}}, true},
		{"division does not match", Filter{Divisions: []string{"Div3"}}, false},
		{
			"all dimensions must match",
			Filter{Years: []int{2024}, Genders: []string{"Boys"}, Divisions: []string{"Div2"}},
			false,
		},
		{
			"full match",
			Filter{Years: []int{2024}, Genders: []string{"Boys"}, Divisions: []string{"Div1"}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(game); got != tt.want {
				t.Errorf("Matches = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestFilterRejectsNilGame(t *testing.T) {
	if (Filter{}).Matches(nil) {
		t.Error("Matches(nil) = true, want false")
	}
}
