// workers/user_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"ambassador-platform/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredProfile matches the JSON response from the profile sync service.
type MirroredProfile struct {
	ExternalID string          `json:"external_id"`
	Username   string          `json:"username"`
	Email      string          `json:"email"`
	FullName   string          `json:"full_name"`
	AvatarURL  *string         `json:"avatar_url,omitempty"`
	Phone      *string         `json:"phone,omitempty"`
	RegionID   *string         `json:"region_id,omitempty"`
	Region     *MirroredRegion `json:"region,omitempty"`
	Role       string          `json:"role"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  *time.Time      `json:"deleted_at,omitempty"`
}

// MirroredRegion is the region metadata embedded in a profile payload. The
// profile service owns regions; this service only mirrors them so that
// leaderboard entries can resolve a region name without a cross-service call.
type MirroredRegion struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

// GetProfileChangesResponse is the top-level structure of the sync response.
type GetProfileChangesResponse struct {
	Profiles []MirroredProfile `json:"profiles"`
}

// UserSyncWorker mirrors ambassador profiles from the upstream profile
// service into the local users table.
type UserSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewUserSyncWorker(db *gorm.DB, syncServiceBaseURL, endpointPath, serviceToken string) *UserSyncWorker {
	return &UserSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      syncServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *UserSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting User Sync Worker (profile-service → users)…")
	go w.run(ctx)
}

func (w *UserSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial user sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	lastSync := time.Now().UTC()
	for {
		select {
		case <-ctx.Done():
			log.Println("User sync worker stopped.")
			return
		case <-ticker.C:
			batchStart := time.Now().UTC()
			if err := w.syncBatch(ctx, lastSync); err != nil {
				log.Printf("⚠️ User sync batch failed: %v", err)
				// Keep lastSync — retry the same window next tick.
				continue
			}
			lastSync = batchStart
		}
	}
}

func (w *UserSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	profiles, err := w.fetchChangedProfiles(ctx, since)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		return nil
	}

	// Regions go in first so the users' region_id references resolve.
	regionsByID := make(map[string]models.Region)
	users := make([]models.User, 0, len(profiles))
	for _, p := range profiles {
		if p.Region != nil && p.Region.ID != "" {
			regionsByID[p.Region.ID] = models.Region{
				ID:      p.Region.ID,
				Name:    p.Region.Name,
				Country: p.Region.Country,
			}
		}
		role := models.UserRole(p.Role)
		if role == "" {
			role = models.RoleAmbassador
		}
		users = append(users, models.User{
			ID:             uuid.NewString(),
			ExternalUserID: p.ExternalID,
			Username:       p.Username,
			Email:          p.Email,
			FullName:       p.FullName,
			AvatarURL:      p.AvatarURL,
			Phone:          p.Phone,
			RegionID:       p.RegionID,
			Role:           role,
			IsActive:       p.IsActive && p.DeletedAt == nil,
		})
	}

	if len(regionsByID) > 0 {
		regions := make([]models.Region, 0, len(regionsByID))
		for _, r := range regionsByID {
			regions = append(regions, r)
		}
		if err := w.db.Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "country"}),
			},
		).Create(&regions).Error; err != nil {
			return fmt.Errorf("failed to upsert %d region(s): %w", len(regions), err)
		}
	}

	// Bulk upsert keyed on the profile service's UUID. Exode cache columns are
	// deliberately left out of the update list — the mirror must never clobber
	// locally synced course points.
	if err := w.db.Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username",
				"email",
				"full_name",
				"avatar_url",
				"phone",
				"region_id",
				"role",
				"is_active",
				"updated_at",
			}),
		},
	).Create(&users).Error; err != nil {
		return fmt.Errorf("failed to upsert %d profile(s): %w", len(users), err)
	}

	log.Printf("📥 Synced %d profile change(s) into users.", len(users))
	return nil
}

func (w *UserSyncWorker) fetchChangedProfiles(ctx context.Context, since time.Time) ([]MirroredProfile, error) {
	u, err := url.Parse(w.baseURL + w.endpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sync URL: %w", err)
	}
	q := u.Query()
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call profile sync service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("profile sync service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response GetProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode profile sync response: %w", err)
	}
	return response.Profiles, nil
}
