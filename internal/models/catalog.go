// internal/models/catalog.go
package models

// CatalogItem is one sellable product supplied by the inventory subsystem.
// Read-only to the engine. Spec values are kept as strings and parsed at
// scoring time, mirroring how requirement parameters are handled.
type CatalogItem struct {
	ID           string            `json:"id"`
	ModelName    string            `json:"modelName"`
	Manufacturer string            `json:"manufacturer"`
	Specs        map[string]string `json:"specs"`
	UnitPrice    float64           `json:"unitPrice"`
	StockQty     int               `json:"stockQty"`
	MinStock     int               `json:"minStock"`
}
