package store

import (
	"context"
	"fmt"
	"time"

	"github.com/brizzai/federated-userinfo/internal/config"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// ArchivedUserInfo is one row of the archive table
type ArchivedUserInfo struct {
	UserKey   string `gorm:"primaryKey;size:255"`
	Blob      []byte `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ArchivedUserInfo) TableName() string {
	return "archived_user_infos"
}

// SQLStore keeps blobs in a relational database through gorm
type SQLStore struct {
	db *gorm.DB
}

var _ Store = (*SQLStore)(nil)

// OpenDB opens a gorm connection for one of the SQL drivers
func OpenDB(driver config.StoreDriver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.StoreDriverPostgres:
		dialector = postgres.Open(dsn)
	case config.StoreDriverMySQL:
		dialector = mysql.Open(dsn)
	case config.StoreDriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported SQL driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return db, nil
}

// NewSQLStore migrates the archive table and returns a store on db
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&ArchivedUserInfo{}); err != nil {
		return nil, fmt.Errorf("failed to migrate archive table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Put(ctx context.Context, key string, blob []byte) error {
	row := ArchivedUserInfo{UserKey: key, Blob: blob}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"blob", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to persist archive: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	// Find instead of First keeps misses out of the gorm log
	var row ArchivedUserInfo
	result := s.db.WithContext(ctx).Where("user_key = ?", key).Limit(1).Find(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load archive: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return row.Blob, nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("user_key = ?", key).Delete(&ArchivedUserInfo{}).Error; err != nil {
		return fmt.Errorf("failed to delete archive: %w", err)
	}
	return nil
}
