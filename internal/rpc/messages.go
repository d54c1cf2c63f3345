package rpc

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type LoginRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	ActivationCode string `json:"activation_code,omitempty"`
}

type LoginResponse struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
	Admin       bool   `json:"admin"`
	Activated   bool   `json:"activated"`
}

// AccountRef names an account by ID or, when the ID is empty, by username.
type AccountRef struct {
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}

type GetActivationCodeRequest struct {
	Account AccountRef `json:"account"`
}

// Activation states as reported over the wire.
const (
	StatePending  = "pending"
	StateConsumed = "consumed"
)

type ActivationCodeResponse struct {
	UserID string `json:"user_id"`
	State  string `json:"state"`
	Code   string `json:"code,omitempty"`
}

type SetActivationCodeRequest struct {
	Account AccountRef `json:"account"`
	// Value is stored verbatim; "active" marks the account activated.
	Value string `json:"value"`
}

type SetActivationCodeResponse struct{}

type ListAccountsRequest struct {
	SortBy string `json:"sort_by,omitempty"`
	Desc   bool   `json:"desc,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

type AccountInfo struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Admin    bool   `json:"admin"`
	State    string `json:"state"`
	Code     string `json:"code,omitempty"`
}

type ListAccountsResponse struct {
	Accounts []AccountInfo `json:"accounts"`
}

type BulkRequest struct{}

type BulkResponse struct {
	Scanned int `json:"scanned"`
	Changed int `json:"changed"`
	Batches int `json:"batches"`
}
