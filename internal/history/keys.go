package history

import "time"

const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// Key functions for GroupBy. Temporal keys use the location of the event's
// timestamp.

func DayKey(e ListeningEvent) string {
	return e.Timestamp.Format(DayLayout)
}

func MonthKey(e ListeningEvent) string {
	return e.Timestamp.Format(MonthLayout)
}

func YearKey(e ListeningEvent) int {
	return e.Timestamp.Year()
}

func HourKey(e ListeningEvent) int {
	return e.Timestamp.Hour()
}

// WeekdayKey is 0 for Sunday through 6 for Saturday.
func WeekdayKey(e ListeningEvent) time.Weekday {
	return e.Timestamp.Weekday()
}

func ArtistKey(e ListeningEvent) string {
	return e.ArtistName
}

// TrackID identifies a track; names alone collide across artists.
type TrackID struct {
	Track  string
	Artist string
}

func TrackKey(e ListeningEvent) TrackID {
	return TrackID{Track: e.TrackName, Artist: e.ArtistName}
}

// AlbumID identifies an album by title and artist.
type AlbumID struct {
	Album  string
	Artist string
}

func AlbumKey(e ListeningEvent) AlbumID {
	return AlbumID{Album: e.AlbumName, Artist: e.ArtistName}
}

// Category functions for CountTransitions.

func ByArtist(e ListeningEvent) string { return e.ArtistName }
func ByAlbum(e ListeningEvent) string  { return e.AlbumName }
func ByTrack(e ListeningEvent) string  { return e.TrackName }
