package redis

import "fmt"

const ns = "moviepass:v1"

func KeyMovieList(category string, page int) string {
	return fmt.Sprintf("%s:catalog:%s:%d", ns, category, page)
}

func KeyMovieDetails(movieID string) string {
	return fmt.Sprintf("%s:catalog:movie:%s", ns, movieID)
}

func KeyMovieSimilar(movieID string, page int) string {
	return fmt.Sprintf("%s:catalog:movie:%s:similar:%d", ns, movieID, page)
}

func KeySearch(query string, page int) string {
	return fmt.Sprintf("%s:catalog:search:%s:%d", ns, query, page)
}

func KeyShowingSeats(showingID string) string {
	return fmt.Sprintf("%s:showing:%s:seats", ns, showingID)
}

func ChannelShowingsChanged() string {
	return ns + ":showings:changed"
}
