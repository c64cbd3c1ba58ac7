package klok

type verifyRequest struct {
	SignedMessage string `json:"signedMessage"`
	Message       string `json:"message"`
	ReferralCode  string `json:"referral_code"`
}

type verifyResponse struct {
	SessionToken string `json:"session_token"`
	UserExists   bool   `json:"user_exists"`
}

type rateLimitResponse struct {
	Remaining int `json:"remaining"`
	ResetTime int `json:"reset_time"`
}

type threadsResponse struct {
	Data []threadEntry `json:"data"`
}

type threadEntry struct {
	ID string `json:"id"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatPayload struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []chatMessage `json:"messages"`
	Sources   []string      `json:"sources"`
	Model     string        `json:"model"`
	CreatedAt string        `json:"created_at"`
	Language  string        `json:"language"`
}

type pointsResponse struct {
	TotalPoints int64 `json:"total_points"`
}

type taskStatusResponse struct {
	HasCompleted bool `json:"has_completed"`
}

type taskRewardResponse struct {
	PointsAwarded int64 `json:"points_awarded"`
}

type ipResponse struct {
	IP string `json:"ip"`
}
