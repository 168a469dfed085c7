package sqlstore

import (
	"database/sql"

	"github.com/phrazzld/wordnews/internal/store"
)

// Stores bundles every store over one database handle.
type Stores struct {
	DB       *sql.DB
	Dialect  Dialect
	Tasks    store.TaskStore
	Profiles store.ProfileStore
	Words    store.WordPoolStore
	Articles store.ArticleStore
}

// NewStores wires all stores to db.
func NewStores(db *sql.DB, dialect Dialect) *Stores {
	return &Stores{
		DB:       db,
		Dialect:  dialect,
		Tasks:    NewTaskStore(db, dialect),
		Profiles: NewProfileStore(db, dialect),
		Words:    NewWordPoolStore(db, dialect),
		Articles: NewArticleStore(db, dialect),
	}
}
