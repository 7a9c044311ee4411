// Package database persists samples to sqlite via gorm and implements
// storage.Backend for subscription catch-up reads.
package database

import (
	"crypto/rand"
	"crypto/sha256"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/schema"
	"github.com/tejbhatt/stock-ticker-app-omnenest-assignment/storage"
	"gorm.io/gorm"
)

func Get(filename string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(filename), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	for _, table := range []any{
		&Sample{},
		&Series{},
	} {
		err = db.AutoMigrate(table)
		if err != nil {
			return nil, errors.Wrap(err, "migrate")
		}
	}
	return db, nil
}

func RandomID() []byte {
	var result [16]byte
	_, err := rand.Read(result[:])
	if err != nil {
		panic(err)
	}
	return result[:]
}

func HashedID(s string) []byte {
	var result [16]byte
	h := sha256.New()
	h.Write([]byte(s))
	sum := h.Sum(nil)
	copy(result[:], sum[:16])
	return result[:]
}

func loadSeries(db *gorm.DB) (map[string]*Series, error) {
	seriesMap := map[string]*Series{}
	{
		var all []*Series
		tx := db.Find(&all)
		if tx.Error != nil {
			return nil, errors.Wrap(tx.Error, "find")
		}

		for _, s := range all {
			seriesMap[s.Name] = s
		}
	}

	return seriesMap, nil
}

type Backend struct {
	db *gorm.DB
}

func NewBackend(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

// GetORM is an escape hatch for callers that need raw gorm access.
func (b *Backend) GetORM() *gorm.DB {
	return b.db
}

func (b *Backend) LoadDataWindow(
	seriesName string,
	start time.Time,
) (schema.Series, error) {
	var rows []Sample

	tx := b.db.Where(
		"series_id = ? and timestamp >= ?",
		HashedID(seriesName),
		start,
	).Order("timestamp asc").Find(&rows)
	if tx.Error != nil {
		return schema.Series{}, errors.Wrap(tx.Error, "find")
	}

	result := schema.Series{
		SeriesName: seriesName,
		Values:     make([]schema.Sample, len(rows)),
	}
	for idx, row := range rows {
		result.Values[idx] = schema.Sample{
			Timestamp: row.Timestamp,
			Value:     row.Value,
		}
	}

	return result, nil
}

func (b *Backend) CreateSeries(
	seriesNames []string,
) error {
	seriesMap, err := loadSeries(b.db)
	if err != nil {
		return errors.Wrap(err, "initial load")
	}

	for _, name := range seriesNames {
		if _, found := seriesMap[name]; found {
			continue
		}
		tx := b.db.Create(&Series{
			ID:   HashedID(name),
			Name: name,
		})
		if tx.Error != nil {
			return errors.Wrap(tx.Error, "create series")
		}
	}

	return nil
}

func (b *Backend) Insert(rows []storage.Row) error {
	err := b.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			res := tx.Create(&Sample{
				ID:        RandomID(),
				Timestamp: row.Sample.Timestamp,
				Value:     row.Sample.Value,
				SeriesID:  HashedID(row.SeriesName),
			})
			if res.Error != nil {
				return errors.Wrap(res.Error, "create")
			}
		}
		return nil
	})
	return err
}
