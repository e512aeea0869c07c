package mediacontrol

// RatingKind identifies the rating scale a track rating is expressed in.
type RatingKind string

// The different rating scales.
const (
	RatingHeart      RatingKind = "heart"
	RatingThumbs     RatingKind = "thumbsUpDown"
	RatingThreeStars RatingKind = "threeStars"
	RatingFourStars  RatingKind = "fourStars"
	RatingFiveStars  RatingKind = "fiveStars"
	RatingPercentage RatingKind = "percentage"
)

// Valid reports whether the kind is a known rating scale.
func (k RatingKind) Valid() bool {
	switch k {
	case RatingHeart, RatingThumbs, RatingThreeStars,
		RatingFourStars, RatingFiveStars, RatingPercentage:
		return true
	}

	return false
}

// String returns the wire name of the rating kind.
func (k RatingKind) String() string {
	return string(k)
}

// Binary reports whether the kind carries a yes/no rating rather than
// a scored one.
func (k RatingKind) Binary() bool {
	return k == RatingHeart || k == RatingThumbs
}

// Scale returns the maximum score of the kind. Binary kinds scale to 1.
func (k RatingKind) Scale() float64 {
	switch k {
	case RatingThreeStars:
		return 3
	case RatingFourStars:
		return 4
	case RatingFiveStars:
		return 5
	case RatingPercentage:
		return 100
	}

	return 1
}

// Rating holds a track rating. Liked carries the value for the binary
// kinds, Score for the scored ones.
type Rating struct {
	Kind  RatingKind `json:"type" codec:"type"`
	Liked bool       `json:"-" codec:"-"`
	Score float64    `json:"-" codec:"-"`
	Max   *float64   `json:"maxValue,omitempty" codec:"maxValue,omitempty"`
}

// Value returns the value that crosses the adapter boundary: a boolean
// for the binary kinds and a number otherwise.
func (r Rating) Value() any {
	if r.Kind.Binary() {
		return r.Liked
	}

	return r.Score
}

// Artwork describes the artwork attached to the current metadata.
// Resolution of the URI is performed by the platform adapter and never
// blocks a metadata update.
type Artwork struct {
	// URI holds the local or remote location of the artwork.
	URI string `json:"uri" codec:"uri"`

	// Width holds the artwork width in pixels, if known.
	Width *float64 `json:"width,omitempty" codec:"width,omitempty"`

	// Height holds the artwork height in pixels, if known.
	Height *float64 `json:"height,omitempty" codec:"height,omitempty"`
}

// Metadata holds the now-playing information of the current track.
// Unset fields are omitted from the payload that crosses the adapter
// boundary.
type Metadata struct {
	// Title holds the title of the track.
	Title *string `json:"title,omitempty" codec:"title,omitempty"`

	// Artist holds the artist name of the track.
	Artist *string `json:"artist,omitempty" codec:"artist,omitempty"`

	// Album holds the album name of the track.
	Album *string `json:"album,omitempty" codec:"album,omitempty"`

	// Genre holds the genre of the track.
	Genre *string `json:"genre,omitempty" codec:"genre,omitempty"`

	// Date holds the release date of the track.
	Date *string `json:"date,omitempty" codec:"date,omitempty"`

	// Duration holds the duration of the track in seconds.
	Duration *float64 `json:"duration,omitempty" codec:"duration,omitempty"`

	// ElapsedTime holds the elapsed playback time in seconds.
	ElapsedTime *float64 `json:"elapsedTime,omitempty" codec:"elapsedTime,omitempty"`

	// TrackNumber holds the playlist position of the track.
	TrackNumber *float64 `json:"trackNumber,omitempty" codec:"trackNumber,omitempty"`

	// AlbumTrackCount holds the total number of tracks on the album.
	AlbumTrackCount *float64 `json:"albumTrackCount,omitempty" codec:"albumTrackCount,omitempty"`

	// Artwork holds the artwork descriptor, if any.
	Artwork *Artwork `json:"artwork,omitempty" codec:"artwork,omitempty"`

	// Rating holds the track rating, if any.
	Rating *Rating `json:"rating,omitempty" codec:"rating,omitempty"`

	// Color holds the accent color of the now-playing presentation.
	Color *string `json:"color,omitempty" codec:"color,omitempty"`

	// Colorized indicates whether the presentation is tinted from the artwork.
	Colorized *bool `json:"colorized,omitempty" codec:"colorized,omitempty"`
}

// Fields returns the payload map that crosses the adapter boundary.
// Every unset field is stripped, so absence never reaches the native
// marshalling layer.
func (m *Metadata) Fields() map[string]any {
	fields := make(map[string]any)

	putString := func(key string, v *string) {
		if v != nil {
			fields[key] = *v
		}
	}
	putNumber := func(key string, v *float64) {
		if v != nil {
			fields[key] = *v
		}
	}

	putString("title", m.Title)
	putString("artist", m.Artist)
	putString("album", m.Album)
	putString("genre", m.Genre)
	putString("date", m.Date)
	putNumber("duration", m.Duration)
	putNumber("elapsedTime", m.ElapsedTime)
	putNumber("trackNumber", m.TrackNumber)
	putNumber("albumTrackCount", m.AlbumTrackCount)
	putString("color", m.Color)

	if m.Colorized != nil {
		fields["colorized"] = *m.Colorized
	}

	if m.Artwork != nil {
		artwork := map[string]any{"uri": m.Artwork.URI}
		if m.Artwork.Width != nil {
			artwork["width"] = *m.Artwork.Width
		}
		if m.Artwork.Height != nil {
			artwork["height"] = *m.Artwork.Height
		}

		fields["artwork"] = artwork
	}

	if m.Rating != nil {
		rating := map[string]any{
			"type":  m.Rating.Kind.String(),
			"value": m.Rating.Value(),
		}
		if m.Rating.Max != nil {
			rating["maxValue"] = *m.Rating.Max
		}

		fields["rating"] = rating
	}

	return fields
}

// FromFields rebuilds a Metadata from a boundary payload map. Unknown
// keys are ignored. A nil or empty map yields nil.
func FromFields(fields map[string]any) *Metadata {
	if len(fields) == 0 {
		return nil
	}

	md := Metadata{}

	str := func(key string) *string {
		if v, ok := fields[key].(string); ok {
			return &v
		}
		return nil
	}
	num := func(key string) *float64 {
		if v, ok := fields[key].(float64); ok {
			return &v
		}
		return nil
	}

	md.Title = str("title")
	md.Artist = str("artist")
	md.Album = str("album")
	md.Genre = str("genre")
	md.Date = str("date")
	md.Duration = num("duration")
	md.ElapsedTime = num("elapsedTime")
	md.TrackNumber = num("trackNumber")
	md.AlbumTrackCount = num("albumTrackCount")
	md.Color = str("color")

	if v, ok := fields["colorized"].(bool); ok {
		md.Colorized = &v
	}

	if artwork, ok := fields["artwork"].(map[string]any); ok {
		if uri, ok := artwork["uri"].(string); ok {
			art := Artwork{URI: uri}
			if w, ok := artwork["width"].(float64); ok {
				art.Width = &w
			}
			if h, ok := artwork["height"].(float64); ok {
				art.Height = &h
			}
			md.Artwork = &art
		}
	}

	if rating, ok := fields["rating"].(map[string]any); ok {
		kind, _ := rating["type"].(string)
		r := Rating{Kind: RatingKind(kind)}
		switch value := rating["value"].(type) {
		case bool:
			r.Liked = value
		case float64:
			r.Score = value
		}
		if max, ok := rating["maxValue"].(float64); ok {
			r.Max = &max
		}
		md.Rating = &r
	}

	return &md
}

// String returns a pointer to the given string, for optional fields.
func String(v string) *string {
	return &v
}

// Number returns a pointer to the given number, for optional fields.
func Number(v float64) *float64 {
	return &v
}

// Bool returns a pointer to the given boolean, for optional fields.
func Bool(v bool) *bool {
	return &v
}
