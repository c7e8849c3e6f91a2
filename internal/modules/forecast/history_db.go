package forecast

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"
)

// HistoryDB reads per-city price history databases. Each city has its own
// SQLite file under the history directory (e.g. history/lisbon.db) with a
// daily_city_prices table, produced offline by the ingestion pipeline.
type HistoryDB struct {
	historyDir string
	log        zerolog.Logger
}

// NewHistoryDB creates a new price history accessor
func NewHistoryDB(historyDir string, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		historyDir: historyDir,
		log:        log.With().Str("component", "history_db").Logger(),
	}
}

// LoadAll reads every city history file in the directory. A missing
// directory yields no observations, which the caller reports as absent
// forecasts rather than a startup failure.
func (h *HistoryDB) LoadAll() ([]Observation, error) {
	entries, err := os.ReadDir(h.historyDir)
	if err != nil {
		if os.IsNotExist(err) {
			h.log.Warn().Str("dir", h.historyDir).Msg("No price history directory; forecasts will be absent")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var observations []Observation
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		city := cityFromFilename(entry.Name())

		cityObs, err := h.loadCity(city, filepath.Join(h.historyDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to load price history for %s: %w", city, err)
		}
		observations = append(observations, cityObs...)
	}

	h.log.Info().
		Int("observations", len(observations)).
		Msg("Price history loaded")

	return observations, nil
}

// loadCity reads the daily price rows of one city file
func (h *HistoryDB) loadCity(city, path string) ([]Observation, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	defer db.Close()

	query := `
		SELECT date, hotel_class, avg_price
		FROM daily_city_prices
		ORDER BY date
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var observations []Observation
	for rows.Next() {
		var dateStr string
		var class sql.NullFloat64
		var price float64

		if err := rows.Scan(&dateStr, &class, &price); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}

		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("bad date %q in history for %s: %w", dateStr, city, err)
		}

		observations = append(observations, Observation{
			City:       city,
			HotelClass: int(class.Float64),
			Date:       date,
			AvgPrice:   price,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	return observations, nil
}

// cityFromFilename turns "new_york.db" into "new york"
func cityFromFilename(name string) string {
	base := strings.TrimSuffix(name, ".db")
	return strings.ReplaceAll(base, "_", " ")
}
