package dto

// SignupRequest is the JSON body of the signup endpoint.
type SignupRequest struct {
	Name           string `json:"name"`
	PhoneNumber    string `json:"phone_number"`
	Password       string `json:"password"`
	GoogleSheetsID string `json:"google_sheets_id"`
}

// SignupResponse carries the outcome plus, on success, the authorization
// URL the user must visit to link their spreadsheet.
type SignupResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	OAuthURL string `json:"oauth_url,omitempty"`
}
