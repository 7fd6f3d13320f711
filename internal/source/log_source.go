package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"lanis_war_tracker/internal/app"
	"lanis_war_tracker/internal/config"
	"lanis_war_tracker/internal/processing"

	"github.com/rs/zerolog/log"
)

// logRow is one scraped war log row as dropped by the browser-side scraper.
// Result labels arrive in the game's language; English labels are accepted
// for hand-written fixtures.
type logRow struct {
	Time          string `json:"time"`
	Village       string `json:"village"`
	AttackerGuild string `json:"attacker_guild"`
	Attacker      string `json:"attacker"`
	Defender      string `json:"defender"`
	Result        string `json:"result"`
}

// FileLogSource reads scraped row batches from a JSON drop file. The scraper
// overwrites the file on each pass with whatever rows are currently visible,
// so batches overlap and may shrink; deduplication happens downstream.
type FileLogSource struct {
	cfg      *app.Config
	now      func() time.Time
	readFile func(string) ([]byte, error)
	retry    config.RetryConfig
}

func NewFileLogSource(cfg *app.Config) *FileLogSource {
	return &FileLogSource{
		cfg:      cfg,
		now:      time.Now,
		readFile: os.ReadFile,
		retry:    config.DefaultResilienceConfig.LogSource,
	}
}

// ScrapeVisibleRows reads the drop file and returns the rows that fall on
// the current day (and collection hour, when configured). Transient read
// failures are retried with backoff; a missing drop file means the scraper
// has not run yet and is reported as ErrSourceUnavailable rather than a
// failure.
func (s *FileLogSource) ScrapeVisibleRows(ctx context.Context) ([]app.EventRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.retry.Timeout)
	defer cancel()

	data, err := readDrop(ctx, s.readFile, s.cfg.LogDropPath, s.retry)
	if os.IsNotExist(err) {
		return nil, processing.ErrSourceUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("read war log drop: %w", err)
	}

	var rows []logRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode war log drop: %w", err)
	}

	today := s.cfg.Today(s.now())
	records := make([]app.EventRecord, 0, len(rows))
	for _, row := range rows {
		record, ok := s.parseRow(row)
		if !ok {
			continue
		}
		local := record.Timestamp.In(s.cfg.Location)
		if local.Format("2006-01-02") != today {
			continue
		}
		if s.cfg.WarHour >= 0 && local.Hour() != s.cfg.WarHour {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *FileLogSource) parseRow(row logRow) (app.EventRecord, bool) {
	ts, err := time.ParseInLocation(app.TimeLayout, row.Time, s.cfg.Location)
	if err != nil {
		log.Warn().Str("time", row.Time).Msg("Skipping war log row with unparseable timestamp")
		return app.EventRecord{}, false
	}

	outcome, ok := parseOutcome(row.Result)
	if !ok {
		log.Warn().Str("result", row.Result).Msg("Skipping war log row with unknown result label")
		return app.EventRecord{}, false
	}

	defender := strings.TrimSpace(row.Defender)
	fortress := defender == "" || isFortressLabel(defender)
	if fortress {
		defender = ""
	}

	return app.EventRecord{
		Timestamp:     ts,
		Village:       strings.TrimSpace(row.Village),
		AttackerGuild: normalizeGuildLabel(row.AttackerGuild),
		AttackerName:  strings.TrimSpace(row.Attacker),
		DefenderName:  defender,
		IsFortress:    fortress,
		Outcome:       outcome,
	}, true
}

func parseOutcome(label string) (app.Outcome, bool) {
	switch {
	case strings.Contains(label, "점령"), strings.Contains(label, "captured"):
		return app.VillageCaptured, true
	case strings.Contains(label, "승리"), strings.Contains(label, "win"):
		return app.AttackWin, true
	case strings.Contains(label, "패배"), strings.Contains(label, "loss"):
		return app.AttackLoss, true
	}
	return "", false
}

func isFortressLabel(defender string) bool {
	return strings.Contains(defender, "요새") || strings.Contains(strings.ToLower(defender), "fortress")
}

// normalizeGuildLabel maps the log's guildless-attacker label onto the
// Unaffiliated sentinel so downstream passes can skip those rows uniformly.
func normalizeGuildLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "무소속" || strings.EqualFold(label, "unaffiliated") {
		return app.Unaffiliated
	}
	return label
}
