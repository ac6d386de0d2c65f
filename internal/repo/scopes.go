package repo

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Scope = func(*gorm.DB) *gorm.DB

func column(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

func ByID(id uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: column("id"), Value: id})
	}
}

func ByIDs(ids []uint) Scope {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.IN{Column: column("id"), Values: values})
	}
}

func ByWebsite(websiteID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: column("website_id"), Value: websiteID})
	}
}

// ByOptionalWebsite filters by website only when websiteID is set.
func ByOptionalWebsite(websiteID *uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if websiteID == nil {
			return db
		}
		return db.Where(clause.Eq{Column: column("website_id"), Value: *websiteID})
	}
}

func ActiveOnly() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: column("active"), Value: true})
	}
}

func NotDeleted() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: column("deleted_date"), Value: nil})
	}
}

func Eq(col string, value any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: column(col), Value: value})
	}
}

// Like matches col case-insensitively against %text%. An empty text matches everything.
func Like(col, text string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if text == "" {
			return db
		}
		return db.Where("LOWER("+col+") LIKE ? ESCAPE '\\'", LikePattern(text))
	}
}

func Where(query any, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

// OrderBy sorts by a trusted column name.
func OrderBy(col string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(clause.OrderByColumn{Column: column(col)})
	}
}

func Preload(name string, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(name, args...)
	}
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
// Dialects without row locks ignore the clause.
func ForUpdate() Scope {
	return func(db *gorm.DB) *gorm.DB {
		if db.Dialector.Name() != "postgres" {
			return db
		}
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
}

func LikePattern(text string) string {
	return "%" + escapeLike(toLower(text)) + "%"
}
