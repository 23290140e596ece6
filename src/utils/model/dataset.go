package model

import (
	"time"

	"github.com/lib/pq"
)

const TableDatasets = "datasets"

// Dataset is a sellable data product.
// TokenId is assigned at most once, right after the row is created,
// and never changes afterwards.
type Dataset struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	Domain           string         `json:"domain"`
	DataSource       string         `json:"data_source"`
	CollectionMethod string         `json:"collection_method"`
	License          string         `json:"license"`
	Tags             pq.StringArray `gorm:"type:text[]" json:"tags"`

	// Price in HBAR, zero means free
	Price float64 `gorm:"type:numeric(18,8)" json:"price"`

	// Owner
	UserId      string `json:"user_id"`
	OwnerWallet string `json:"owner_wallet"`

	// Access credential token, minted once at upload time
	TokenId string `json:"token_id"`

	// Blob store keys, full files are private, samples are public
	TrainFileKey       string `json:"train_file_key"`
	TestFileKey        string `json:"test_file_key"`
	ValidationFileKey  string `json:"validation_file_key"`
	AdditionalFilesKey string `json:"additional_files_key"`
	TrainSampleKey     string `json:"train_sample_key"`
	TestSampleKey      string `json:"test_sample_key"`

	SampleMetadata JSONB `gorm:"type:jsonb" json:"sample_metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Dataset) TableName() string {
	return TableDatasets
}
