package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WidgetResponse - public aggregate view of one target
type WidgetResponse struct {
	TargetType  string           `json:"target_type"`
	TargetID    string           `json:"target_id"`
	Likes       int64            `json:"likes"`
	Favorites   int64            `json:"favorites"`
	Bookmarks   int64            `json:"bookmarks"`
	Emojis      map[string]int64 `json:"emojis"`
	RatingAvg   *float64         `json:"rating_avg"`
	RatingCount int64            `json:"rating_count"`
}
