package models

// LeaderboardEntry is a derived row, recomputed on every read — never
// persisted. The UI shows all three numbers: platform total from the ledger,
// course total from the Exode cache, and their sum.
type LeaderboardEntry struct {
	UserID            string `json:"user_id"`
	FullName          string `json:"full_name"`
	Username          string `json:"username"`
	AvatarURL         string `json:"avatar_url,omitempty"`
	RegionName        string `json:"region_name,omitempty"`
	TotalPoints       int64  `json:"total_points"`        // sum of PointGrant.Amount
	ExodeCoursePoints int64  `json:"exode_course_points"` // cached external value
	CombinedPoints    int64  `json:"combined_points"`
	Rank              int    `json:"rank"`
}

// LeaderboardResponse wraps the ranked entries for the API.
type LeaderboardResponse struct {
	Region     string             `json:"region,omitempty"`
	Limit      int                `json:"limit"`
	TotalUsers int                `json:"total_users"`
	Entries    []LeaderboardEntry `json:"entries"`
}
