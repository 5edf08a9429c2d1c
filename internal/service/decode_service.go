package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vehicle-decoder/internal/domain/vehicle"
	"vehicle-decoder/internal/observability"
	"vehicle-decoder/internal/provider"
	"vehicle-decoder/internal/provider/carsxe"
	"vehicle-decoder/internal/provider/vpic"
	"vehicle-decoder/internal/repository"
	"vehicle-decoder/internal/utils"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrHistoryDisabled = errors.New("lookup history is disabled")
)

// VINDecoder fetches raw decoded values for a VIN.
type VINDecoder interface {
	Decode(ctx context.Context, vin, modelYear string) (vpic.RawResult, error)
}

// PlateDecoder fetches the raw decoder response for a plate and state.
type PlateDecoder interface {
	Decode(ctx context.Context, plate, state string) (carsxe.RawResult, error)
}

// EventSink receives lookup events after a decode attempt resolves. The
// WebSocket hub implements it.
type EventSink interface {
	Broadcast(ev vehicle.LookupEvent)
}

// LookupStore persists decode attempts and serves history queries.
// *repository.LookupRepository implements it.
type LookupStore interface {
	CreateLookup(ctx context.Context, row *repository.Lookup) error
	FindLookups(ctx context.Context, normalized []string, kind *string, limit, offset int) ([]repository.Lookup, error)
	DeleteOldLookups(ctx context.Context, days int) (int64, error)
}

type DecodeService struct {
	vins   VINDecoder
	plates PlateDecoder
	repo   LookupStore
	sink   EventSink
	log    zerolog.Logger
}

// NewDecodeService wires the decode pipelines. repo and sink may be
// nil: a nil repo disables history, a nil sink disables the live feed.
func NewDecodeService(vins VINDecoder, plates PlateDecoder, repo LookupStore, sink EventSink, log zerolog.Logger) *DecodeService {
	return &DecodeService{
		vins:   vins,
		plates: plates,
		repo:   repo,
		sink:   sink,
		log:    log,
	}
}

// DecodeVIN normalizes the VIN, queries the VIN decoder and maps the
// response into the canonical record. The attempt is recorded in
// history and broadcast to feeds whether it succeeds or not.
func (s *DecodeService) DecodeVIN(ctx context.Context, rawVIN, modelYear string) (vehicle.Vehicle, error) {
	vin := utils.NormalizeVIN(rawVIN)
	if vin == "" {
		return vehicle.Vehicle{}, fmt.Errorf("%w: vin is required", ErrInvalidInput)
	}
	modelYear = strings.TrimSpace(modelYear)

	start := time.Now()
	raw, err := s.vins.Decode(ctx, vin, modelYear)
	observability.ProviderLatency.WithLabelValues("vpic").Observe(time.Since(start).Seconds())
	if err != nil {
		observability.ProviderRequests.WithLabelValues("vpic", "error").Inc()
		s.log.Error().
			Err(err).
			Str("vin", vin).
			Msg("VIN decode failed")
		s.record(ctx, vehicle.LookupKindVIN, vin, vin, "", nil, nil, err.Error())
		return vehicle.Vehicle{}, fmt.Errorf("vin decode: %w", err)
	}
	observability.ProviderRequests.WithLabelValues("vpic", "ok").Inc()

	car := vpic.Normalize(vin, raw)
	s.log.Info().
		Str("vin", vin).
		Str("year", car.Year).
		Str("make", car.Make).
		Str("model", car.Model).
		Msg("decoded VIN")
	s.record(ctx, vehicle.LookupKindVIN, vin, vin, "", &car, raw, "")

	return car, nil
}

// DecodePlate queries the plate decoder for a plate and state pair. The
// returned outcome carries either the canonical record or, when the
// provider reported its own failure, the provider body unchanged.
func (s *DecodeService) DecodePlate(ctx context.Context, rawPlate, rawState string) (carsxe.Outcome, error) {
	plate := strings.ToUpper(strings.TrimSpace(rawPlate))
	state := strings.ToUpper(strings.TrimSpace(rawState))
	if plate == "" {
		return carsxe.Outcome{}, fmt.Errorf("%w: plate is required", ErrInvalidInput)
	}
	if state == "" {
		return carsxe.Outcome{}, fmt.Errorf("%w: state is required", ErrInvalidInput)
	}

	normalized := utils.NormalizePlate(plate)

	start := time.Now()
	raw, err := s.plates.Decode(ctx, plate, state)
	if err != nil && provider.NotConfigured(err) {
		// disabled feature, not a provider fault: no history row
		return carsxe.Outcome{}, fmt.Errorf("plate decode: %w", err)
	}
	observability.ProviderLatency.WithLabelValues("carsxe").Observe(time.Since(start).Seconds())
	if err != nil {
		observability.ProviderRequests.WithLabelValues("carsxe", "error").Inc()
		s.log.Error().
			Err(err).
			Str("plate", plate).
			Str("state", state).
			Msg("plate decode failed")
		s.record(ctx, vehicle.LookupKindPlate, plate, normalized, state, nil, nil, err.Error())
		return carsxe.Outcome{}, fmt.Errorf("plate decode: %w", err)
	}

	outcome := carsxe.Normalize(raw)
	if outcome.Succeeded() {
		observability.ProviderRequests.WithLabelValues("carsxe", "ok").Inc()
		s.log.Info().
			Str("plate", plate).
			Str("state", state).
			Str("make", outcome.Vehicle.Make).
			Str("model", outcome.Vehicle.Model).
			Msg("decoded plate")
		s.record(ctx, vehicle.LookupKindPlate, plate, normalized, state, outcome.Vehicle, raw, "")
	} else {
		observability.ProviderRequests.WithLabelValues("carsxe", "failed").Inc()
		s.log.Warn().
			Str("plate", plate).
			Str("state", state).
			Str("reason", carsxe.ErrorMessage(raw)).
			Msg("plate decoder reported failure")
		s.record(ctx, vehicle.LookupKindPlate, plate, normalized, state, nil, raw, carsxe.ErrorMessage(raw))
	}

	return outcome, nil
}

// record persists the attempt when history is enabled and broadcasts it
// to the live feed. Neither write disturbs the decode response.
func (s *DecodeService) record(ctx context.Context, kind, query, normalized, region string, car *vehicle.Vehicle, raw any, errText string) {
	status := vehicle.LookupStatusOK
	if errText != "" {
		status = vehicle.LookupStatusError
	}

	if s.repo != nil {
		row, err := repository.NewLookup(kind, query, normalized, region, status, errText, car, raw)
		if err == nil {
			err = s.repo.CreateLookup(ctx, row)
		}
		if err != nil {
			s.log.Error().
				Err(err).
				Str("kind", kind).
				Str("query", query).
				Msg("failed to record lookup")
		}
	}

	if s.sink != nil {
		s.sink.Broadcast(vehicle.LookupEvent{
			Kind:    kind,
			Query:   query,
			Region:  region,
			Status:  status,
			Vehicle: car,
			Error:   errText,
			At:      time.Now(),
		})
	}
}

// Lookups lists history rows, newest first, optionally filtered by
// identifier and kind. The identifier filter is normalized the way the
// matching kind is stored; without a kind filter both forms are tried.
func (s *DecodeService) Lookups(ctx context.Context, query, kind string, limit, offset int) ([]LookupInfo, error) {
	if s.repo == nil {
		return nil, ErrHistoryDisabled
	}

	var kindFilter *string
	switch kind {
	case "":
	case vehicle.LookupKindVIN, vehicle.LookupKindPlate:
		kindFilter = &kind
	default:
		return nil, fmt.Errorf("%w: unknown lookup kind %q", ErrInvalidInput, kind)
	}

	var candidates []string
	if q := strings.TrimSpace(query); q != "" {
		switch kind {
		case vehicle.LookupKindVIN:
			candidates = []string{utils.NormalizeVIN(q)}
		case vehicle.LookupKindPlate:
			candidates = []string{utils.NormalizePlate(q)}
		default:
			vinForm := utils.NormalizeVIN(q)
			plateForm := utils.NormalizePlate(q)
			candidates = []string{vinForm}
			if plateForm != vinForm {
				candidates = append(candidates, plateForm)
			}
		}
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.repo.FindLookups(ctx, candidates, kindFilter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to find lookups: %w", err)
	}

	return toLookupInfos(rows), nil
}

// exportLimit caps how many history rows a report covers.
const exportLimit = 1000

// ExportLookups returns the newest history rows for report generation.
func (s *DecodeService) ExportLookups(ctx context.Context) ([]LookupInfo, error) {
	if s.repo == nil {
		return nil, ErrHistoryDisabled
	}

	rows, err := s.repo.FindLookups(ctx, nil, nil, exportLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to export lookups: %w", err)
	}

	return toLookupInfos(rows), nil
}

// RecentEvents returns the newest history rows as feed events, oldest
// first. main uses it at startup to seed the live feed backlog so the
// replay ring survives a restart.
func (s *DecodeService) RecentEvents(ctx context.Context, n int) ([]vehicle.LookupEvent, error) {
	if s.repo == nil || n <= 0 {
		return nil, nil
	}

	rows, err := s.repo.FindLookups(ctx, nil, nil, n, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent lookups: %w", err)
	}

	events := make([]vehicle.LookupEvent, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		events = append(events, eventFromRow(rows[i]))
	}
	return events, nil
}

// eventFromRow rebuilds the feed event for a stored attempt. Only the
// summary fields survive storage, which is all the feed shows.
func eventFromRow(row repository.Lookup) vehicle.LookupEvent {
	ev := vehicle.LookupEvent{
		Kind:   row.Kind,
		Query:  row.Query,
		Status: row.Status,
		At:     row.CreatedAt,
	}
	if row.Region != nil {
		ev.Region = *row.Region
	}
	if row.Error != nil {
		ev.Error = *row.Error
	}
	if row.Year != nil || row.Make != nil || row.Model != nil {
		car := &vehicle.Vehicle{}
		if row.Kind == vehicle.LookupKindVIN {
			car.VIN = row.Query
		}
		if row.Year != nil {
			car.Year = *row.Year
		}
		if row.Make != nil {
			car.Make = *row.Make
		}
		if row.Model != nil {
			car.Model = *row.Model
		}
		ev.Vehicle = car
	}
	return ev
}

// CleanupOldLookups removes history rows older than the given number of days.
func (s *DecodeService) CleanupOldLookups(ctx context.Context, days int) (int64, error) {
	if s.repo == nil {
		return 0, nil
	}

	deleted, err := s.repo.DeleteOldLookups(ctx, days)
	if err != nil {
		s.log.Error().Err(err).Int("days", days).Msg("failed to cleanup old lookups")
		return 0, err
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted_count", deleted).Int("days", days).Msg("cleaned up old lookups")
	}
	return deleted, nil
}

func toLookupInfos(rows []repository.Lookup) []LookupInfo {
	result := make([]LookupInfo, 0, len(rows))
	for _, row := range rows {
		result = append(result, LookupInfo{
			ID:         row.ID.String(),
			Kind:       row.Kind,
			Query:      row.Query,
			Normalized: row.Normalized,
			Region:     row.Region,
			Status:     row.Status,
			Error:      row.Error,
			Year:       row.Year,
			Make:       row.Make,
			Model:      row.Model,
			CreatedAt:  row.CreatedAt,
		})
	}
	return result
}

type LookupInfo struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Query      string    `json:"query"`
	Normalized string    `json:"normalized"`
	Region     *string   `json:"region,omitempty"`
	Status     string    `json:"status"`
	Error      *string   `json:"error,omitempty"`
	Year       *string   `json:"year,omitempty"`
	Make       *string   `json:"make,omitempty"`
	Model      *string   `json:"model,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
