// ambassador-platform/services/exode_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ExodeClient talks to the Exode learning platform API. The platform is an
// external collaborator: this service only consumes find-user, create-user,
// token generation, and the course-points balance.
type ExodeClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewExodeClient(baseURL, apiKey string) *ExodeClient {
	return &ExodeClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ExodeUser is the platform's view of a learner.
type ExodeUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// ExodeBalance is the learner's course-points balance on the platform.
type ExodeBalance struct {
	UserID string `json:"user_id"`
	Points int64  `json:"points"`
}

// ExodeToken is a short-lived SSO token for the platform.
type ExodeToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FindUser looks a learner up by email. Returns (nil, nil) when absent.
func (c *ExodeClient) FindUser(email string) (*ExodeUser, error) {
	url := fmt.Sprintf("%s/api/users?email=%s", c.BaseURL, email)
	body, status, err := c.do("GET", url, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("exode find-user returned %d", status)
	}
	var out ExodeUser
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser registers a learner on the platform.
func (c *ExodeClient) CreateUser(email, fullName string) (*ExodeUser, error) {
	url := fmt.Sprintf("%s/api/users", c.BaseURL)
	body, status, err := c.do("POST", url, map[string]interface{}{
		"email":     email,
		"full_name": fullName,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, fmt.Errorf("exode create-user returned %d", status)
	}
	var out ExodeUser
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateToken mints an SSO token for a linked learner.
func (c *ExodeClient) GenerateToken(exodeUserID string) (*ExodeToken, error) {
	url := fmt.Sprintf("%s/api/users/%s/token", c.BaseURL, exodeUserID)
	body, status, err := c.do("POST", url, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, fmt.Errorf("exode token generation returned %d", status)
	}
	var out ExodeToken
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBalance fetches the learner's current course-points balance.
func (c *ExodeClient) GetBalance(exodeUserID string) (*ExodeBalance, error) {
	url := fmt.Sprintf("%s/api/users/%s/balance", c.BaseURL, exodeUserID)
	body, status, err := c.do("GET", url, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("exode balance query returned %d", status)
	}
	var out ExodeBalance
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *ExodeClient) do(method, url string, payload interface{}) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, _ := json.Marshal(payload)
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		log.Printf("Exode %s %s returned %d: %s", method, url, resp.StatusCode, string(body))
	}
	return body, resp.StatusCode, nil
}
