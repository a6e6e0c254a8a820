package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"partmap/internal/aggregate"
	"partmap/internal/config"
	"partmap/internal/mapping"
	"partmap/internal/resolve"
)

// InputFile is one uploaded file, already read into memory.
type InputFile struct {
	Name    string
	Content []byte
}

// FileResult is the resolved and aggregated table of one record file.
type FileResult struct {
	Name        string
	Result      *aggregate.Result
	InputRows   int
	ChangedRows int
}

// Warning reports a record file that was skipped.
type Warning struct {
	File string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.File, w.Err)
}

type BatchResult struct {
	RunID    string
	Files    []FileResult
	Warnings []Warning
	Changes  resolve.ChangeSet
	Tiers    []*mapping.TierIndex
}

type BatchService struct {
	cfg config.Config
}

func NewBatchService(cfg config.Config) *BatchService {
	return &BatchService{cfg: cfg}
}

// LoadResolver reads a mapping file and builds the resolver over the default
// tiers. A *mapping.SchemaError here is fatal for the batch.
func LoadResolver(file InputFile) (*resolve.Resolver, error) {
	rows, err := ReadMappingRows(file.Name, file.Content)
	if err != nil {
		return nil, fmt.Errorf("read mapping %q: %w", file.Name, err)
	}
	table, err := mapping.Load(rows)
	if err != nil {
		return nil, err
	}
	return resolve.NewResolver(mapping.BuildTiers(table, mapping.DefaultTiers)), nil
}

// Run loads the mapping once and resolves and aggregates every record file
// against it. A mapping failure aborts the batch; a record file failure only
// skips that file and is reported in Warnings.
func (s *BatchService) Run(mappingFile InputFile, files []InputFile) (*BatchResult, error) {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))
	start := time.Now()

	resolver, err := LoadResolver(mappingFile)
	if err != nil {
		log.Error("mapping load failed", zap.String("file", mappingFile.Name), zap.Error(err))
		return nil, err
	}
	for _, tier := range resolver.Tiers() {
		log.Debug("tier built", zap.String("tier", tier.Name()), zap.Int("entries", tier.Len()))
		for _, ow := range tier.Overwrites() {
			log.Warn("duplicate mapping key, later row wins",
				zap.String("tier", tier.Name()),
				zap.String("key", ow.Key),
				zap.String("previous", ow.Previous),
				zap.String("current", ow.Current),
				zap.Int("row", ow.Row))
		}
	}

	results, trackers, errs := s.processAll(resolver, files)

	out := &BatchResult{RunID: runID, Tiers: resolver.Tiers()}
	merged := resolve.NewTracker()
	for i, file := range files {
		if errs[i] != nil {
			warn := Warning{File: file.Name, Err: &FileParseError{File: file.Name, Err: errs[i]}}
			log.Warn("record file skipped", zap.String("file", file.Name), zap.Error(errs[i]))
			out.Warnings = append(out.Warnings, warn)
			continue
		}
		merged.Merge(trackers[i])
		out.Files = append(out.Files, results[i])
	}
	out.Changes = merged.ChangeSet()

	log.Info("batch done",
		zap.Int("files", len(out.Files)),
		zap.Int("warnings", len(out.Warnings)),
		zap.Int("changed", out.Changes.Len()),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return out, nil
}

func (s *BatchService) processAll(resolver *resolve.Resolver, files []InputFile) ([]FileResult, []*resolve.Tracker, []error) {
	results := make([]FileResult, len(files))
	trackers := make([]*resolve.Tracker, len(files))
	errs := make([]error, len(files))

	if s.cfg.Workers <= 1 {
		for i, file := range files {
			trackers[i] = resolve.NewTracker()
			results[i], errs[i] = ProcessFile(resolver, trackers[i], file)
		}
		return results, trackers, errs
	}

	// Tiers are read-only, so workers share the resolver. Each file gets its
	// own tracker and slot; file errors never cancel siblings.
	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			trackers[i] = resolve.NewTracker()
			results[i], errs[i] = ProcessFile(resolver, trackers[i], file)
			return nil
		})
	}
	_ = g.Wait()
	return results, trackers, errs
}

// ProcessFile resolves every identifier of one record file, records changed
// identifiers in tracker and aggregates the result.
func ProcessFile(resolver *resolve.Resolver, tracker *resolve.Tracker, file InputFile) (res FileResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing: %v", r)
		}
	}()

	sheet, err := ReadSheet(file.Name, file.Content)
	if err != nil {
		return FileResult{}, err
	}
	table, err := aggregate.NewTable(sheet, NumberParser(sheet.Source))
	if err != nil {
		return FileResult{}, fmt.Errorf("%w: %v", ErrNoColumns, err)
	}

	changed := 0
	for i := range table.Records {
		resolved := resolver.Resolve(table.Records[i].Identifier)
		tracker.Observe(resolved)
		if resolved.Changed {
			changed++
		}
		table.Records[i].Identifier = resolved.Final
	}

	result := aggregate.Aggregate(table)
	zap.L().Debug("record file processed",
		zap.String("file", file.Name),
		zap.Int("rows", len(table.Records)),
		zap.Int("groups", len(result.Records)),
		zap.Int("changed_rows", changed))

	return FileResult{Name: file.Name, Result: result, InputRows: len(table.Records), ChangedRows: changed}, nil
}
