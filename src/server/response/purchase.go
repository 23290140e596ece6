package response

import (
	"github.com/hiveminds/marketplace/src/purchase"
	"github.com/hiveminds/marketplace/src/utils/model"
)

type Purchase struct {
	Success      bool              `json:"success"`
	Purchase     *model.Purchase   `json:"purchase"`
	Verification *purchase.Verdict `json:"verification"`
}

type Access struct {
	HasAccess bool `json:"has_access"`
}
