package repo

import (
	"strings"
	"sync"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/Skotchmaster/multisite_shop/internal/util"
)

type Paging struct {
	PageNumber int
	PageSize   int
	OrderBy    string
	Descending bool
}

type Page[T any] struct {
	Items      []T
	Total      int64
	PageNumber int
	PageSize   int
	TotalPages int
}

var schemaCache sync.Map

// orderColumn resolves name to a column of T. Both the Go field name and the column name are
// accepted; anything else, including association fields, yields "".
func orderColumn[T any](db *gorm.DB, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	sch, err := schema.Parse(new(T), &schemaCache, db.NamingStrategy)
	if err != nil {
		return ""
	}
	f := sch.LookUpField(name)
	if f == nil {
		f = sch.LookUpField(db.NamingStrategy.ColumnName("", name))
	}
	if f == nil || f.DBName == "" {
		return ""
	}
	return f.DBName
}

func applyPaging[T any](db *gorm.DB, p Paging) *gorm.DB {
	offset, limit := util.Calculate(p.PageNumber, p.PageSize)
	if col := orderColumn[T](db, p.OrderBy); col != "" {
		dir := " ASC"
		if p.Descending {
			dir = " DESC"
		}
		db = db.Order(pq.QuoteIdentifier(col) + dir)
	}
	return db.Offset(offset).Limit(limit)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func toLower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
