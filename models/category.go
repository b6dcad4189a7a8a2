package models

import "time"

// DefaultCategoryIcon is used when a category is saved without an icon.
const DefaultCategoryIcon = "fas fa-question-circle"

// Category groups transactions. The id is a slug of the name, unique per owner.
type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;size:100"`
	UserID    uint      `json:"-" gorm:"primaryKey;autoIncrement:false"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	Type      Kind      `json:"type" gorm:"size:20;not null"`
	Icon      string    `json:"icon" gorm:"size:50"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Category) TableName() string {
	return "categories"
}

// DefaultCategories returns the set every new account starts with.
func DefaultCategories() []Category {
	return []Category{
		{ID: "salary", Name: "Gaji/Uang Saku", Type: KindIncome, Icon: "fas fa-money-bill-wave"},
		{ID: "freelance", Name: "Freelance", Type: KindIncome, Icon: "fas fa-laptop"},
		{ID: "gift", Name: "Hadiah", Type: KindIncome, Icon: "fas fa-gift"},
		{ID: "other-income", Name: "Lainnya", Type: KindIncome, Icon: "fas fa-plus-circle"},

		{ID: "food", Name: "Makanan", Type: KindExpense, Icon: "fas fa-utensils"},
		{ID: "transport", Name: "Transportasi", Type: KindExpense, Icon: "fas fa-car"},
		{ID: "education", Name: "Pendidikan", Type: KindExpense, Icon: "fas fa-graduation-cap"},
		{ID: "entertainment", Name: "Hiburan", Type: KindExpense, Icon: "fas fa-gamepad"},
		{ID: "health", Name: "Kesehatan", Type: KindExpense, Icon: "fas fa-heartbeat"},
		{ID: "shopping", Name: "Belanja", Type: KindExpense, Icon: "fas fa-shopping-cart"},
		{ID: "bills", Name: "Tagihan", Type: KindExpense, Icon: "fas fa-file-invoice"},
		{ID: "other-expense", Name: "Lainnya", Type: KindExpense, Icon: "fas fa-minus-circle"},
	}
}
