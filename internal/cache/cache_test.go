package cache

import "testing"

func TestMovieListKey(t *testing.T) {
	tests := []struct {
		name  string
		genre string
		page  int
		limit int
		want  string
	}{
		{"no genre", "", 1, 10, "movies:list:all:1:10"},
		{"with genre", "horror", 2, 25, "movies:list:horror:2:25"},
		{"first page default", "drama", 1, 10, "movies:list:drama:1:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MovieListKey(tt.genre, tt.page, tt.limit); got != tt.want {
				t.Fatalf("MovieListKey(%q, %d, %d) = %q, want %q", tt.genre, tt.page, tt.limit, got, tt.want)
			}
		})
	}
}

func TestMovieListKeyDistinct(t *testing.T) {
	a := MovieListKey("horror", 1, 10)
	b := MovieListKey("", 1, 10)
	if a == b {
		t.Fatalf("keys for different filters must differ, both %q", a)
	}
}
