package clients

// Manufacturer is a vehicle make as published by the catalog actor.
type Manufacturer struct {
	ManufacturerID int64  `json:"manufacturerId"`
	Brand          string `json:"brand"`
}

// Model is a vehicle model series of one manufacturer.
type Model struct {
	ModelID       int64   `json:"modelId"`
	ModelName     string  `json:"modelName"`
	ModelYearFrom string  `json:"modelYearFrom"`
	ModelYearTo   *string `json:"modelYearTo"`
}

// Vehicle is one engine variant of a model.
type Vehicle struct {
	VehicleID                 int64   `json:"vehicleId"`
	ManufacturerName          string  `json:"manufacturerName"`
	ModelName                 string  `json:"modelName"`
	TypeEngineName            string  `json:"typeEngineName"`
	PowerKw                   string  `json:"powerKw"`
	PowerPs                   string  `json:"powerPs"`
	FuelType                  string  `json:"fuelType"`
	BodyType                  string  `json:"bodyType"`
	ConstructionIntervalStart string  `json:"constructionIntervalStart"`
	ConstructionIntervalEnd   *string `json:"constructionIntervalEnd"`
}

// Category is one flattened row of the part-category tree, up to four
// levels deep. Pointer fields are null below the row's own level.
type Category struct {
	Level      int     `json:"level"`
	LevelText1 *string `json:"levelText_1"`
	LevelID1   *string `json:"levelId_1"`
	LevelText2 *string `json:"levelText_2"`
	LevelID2   *string `json:"levelId_2"`
	LevelText3 *string `json:"levelText_3"`
	LevelID3   *string `json:"levelId_3"`
	LevelText4 *string `json:"levelText_4"`
	LevelID4   *string `json:"levelId_4"`
}

// Article is a catalog part listing.
type Article struct {
	ArticleID            int64  `json:"articleId"`
	ArticleNo            string `json:"articleNo"`
	SupplierName         string `json:"supplierName"`
	SupplierID           int64  `json:"supplierId"`
	ArticleProductName   string `json:"articleProductName"`
	ProductID            int64  `json:"productId"`
	ArticleMediaType     int    `json:"articleMediaType"`
	ArticleMediaFileName string `json:"articleMediaFileName"`
	ImageLink            string `json:"imageLink"`
	ImageMedia           string `json:"imageMedia"`
	S3ImageLink          string `json:"s3ImageLink"`
}
