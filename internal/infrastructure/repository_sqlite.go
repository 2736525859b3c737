package infrastructure

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// SQLiteFetchRepository implements FetchRequestRepository using SQLite.
// It records the history of every request the pipeline handled.
type SQLiteFetchRepository struct {
	db *gorm.DB
}

// NewSQLiteFetchRepository creates a new SQLite repository
func NewSQLiteFetchRepository(dbPath string) (*SQLiteFetchRepository, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.FetchRequest{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteFetchRepository{db: db}, nil
}

// Create creates a new fetch request record
func (r *SQLiteFetchRepository) Create(req *domain.FetchRequest) error {
	return r.db.Create(req).Error
}

// Update updates an existing fetch request record
func (r *SQLiteFetchRepository) Update(req *domain.FetchRequest) error {
	return r.db.Save(req).Error
}

// Delete deletes a fetch request by ID
func (r *SQLiteFetchRepository) Delete(id string) error {
	return r.db.Delete(&domain.FetchRequest{}, "id = ?", id).Error
}

// FindByID finds a fetch request by ID
func (r *SQLiteFetchRepository) FindByID(id string) (*domain.FetchRequest, error) {
	var req domain.FetchRequest
	err := r.db.First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByStatus finds fetch requests by status
func (r *SQLiteFetchRepository) FindByStatus(status domain.FetchStatus) ([]*domain.FetchRequest, error) {
	var reqs []*domain.FetchRequest
	err := r.db.Where("status = ?", status).Find(&reqs).Error
	return reqs, err
}

// FindPending finds unresolved requests oldest first, so the worker
// serves them in submission order.
func (r *SQLiteFetchRepository) FindPending() ([]*domain.FetchRequest, error) {
	var reqs []*domain.FetchRequest
	err := r.db.Where("status = ?", domain.StatusUnresolved).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

// FindAll finds all fetch requests with optional filters
func (r *SQLiteFetchRepository) FindAll(filters map[string]interface{}) ([]*domain.FetchRequest, error) {
	var reqs []*domain.FetchRequest
	query := r.db

	for key, value := range filters {
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	err := query.Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

// Count returns the total number of fetch requests
func (r *SQLiteFetchRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.FetchRequest{}).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of fetch requests by status
func (r *SQLiteFetchRepository) CountByStatus(status domain.FetchStatus) (int64, error) {
	var count int64
	err := r.db.Model(&domain.FetchRequest{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// GetStats returns pipeline statistics grouped by outcome
func (r *SQLiteFetchRepository) GetStats() (*domain.FetchStats, error) {
	stats := &domain.FetchStats{}

	if err := r.db.Model(&domain.FetchRequest{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.FetchStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.FetchRequest{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	var cleaned int64
	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.StatusUnresolved:
			stats.Pending = sc.Count
		case domain.StatusResolving, domain.StatusResolved, domain.StatusAcquiring, domain.StatusAcquired:
			stats.Active += sc.Count
		case domain.StatusDelivered:
			stats.Delivered += sc.Count
		case domain.StatusRejected:
			stats.Rejected += sc.Count
		case domain.StatusFailed:
			stats.Failed += sc.Count
		case domain.StatusCleaned:
			cleaned = sc.Count
		}
	}

	// Cleaned requests keep their pre-cleanup outcome in mode and
	// error_message; attribute them accordingly.
	if cleaned > 0 {
		var count int64
		if err := r.db.Model(&domain.FetchRequest{}).
			Where("status = ? AND mode = ?", domain.StatusCleaned, domain.TransmitRejected).
			Count(&count).Error; err != nil {
			return nil, err
		}
		stats.Rejected += count

		var failed int64
		if err := r.db.Model(&domain.FetchRequest{}).
			Where("status = ? AND mode != ? AND error_message != ''", domain.StatusCleaned, domain.TransmitRejected).
			Count(&failed).Error; err != nil {
			return nil, err
		}
		stats.Failed += failed
		stats.Delivered += cleaned - count - failed
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteFetchRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
