package catalog

type Category struct {
	ID   int64  `gorm:"column:id;primaryKey" json:"id"`
	Name string `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Icon string `gorm:"column:icon" json:"icon,omitempty"`
}

func (Category) TableName() string { return "service_categories" }

type Service struct {
	ID         int64  `gorm:"column:id;primaryKey" json:"id"`
	CategoryID int64  `gorm:"column:category_id;index;not null" json:"category_id"`
	Name       string `gorm:"column:name;not null" json:"name"`
}

func (Service) TableName() string { return "services" }

// ServiceRef is the compact service shape nested under a category.
type ServiceRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CategoryWithServices struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Icon     string       `json:"icon,omitempty"`
	Services []ServiceRef `json:"services"`
}
