package request

import "encoding/json"

type CreateDataset struct {
	Title            string   `json:"title" binding:"required"`
	Description      string   `json:"description"`
	Domain           string   `json:"domain"`
	DataSource       string   `json:"data_source"`
	CollectionMethod string   `json:"collection_method"`
	License          string   `json:"license"`
	Tags             []string `json:"tags"`

	// Price in HBAR, zero means free
	Price float64 `json:"price" binding:"gte=0"`

	OwnerWallet string `json:"owner_wallet" binding:"required"`

	TrainFileKey       string `json:"train_file_key"`
	TestFileKey        string `json:"test_file_key"`
	ValidationFileKey  string `json:"validation_file_key"`
	AdditionalFilesKey string `json:"additional_files_key"`
	TrainSampleKey     string `json:"train_sample_key"`
	TestSampleKey      string `json:"test_sample_key"`

	SampleMetadata json.RawMessage `json:"sample_metadata"`
}
