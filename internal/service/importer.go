package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jjenkins/agencydash/internal/model"
)

// DefaultChunkSize is the number of contacts written per transaction
const DefaultChunkSize = 100

// AgencyWriter inserts agencies
type AgencyWriter interface {
	InsertAgency(ctx context.Context, a *model.Agency) (bool, error)
}

// ContactWriter inserts contacts in batches
type ContactWriter interface {
	InsertContacts(ctx context.Context, contacts []model.Contact) (int, error)
}

// ImportStats tracks import statistics
type ImportStats struct {
	AgenciesRead     int
	AgenciesInserted int
	AgenciesExisting int
	AgenciesFailed   int

	ContactsRead     int
	ContactsInserted int
	ContactsExisting int
	ContactsUnlinked int
}

// Importer loads the agency and contact seed files into the directory
type Importer struct {
	parser    *Parser
	agencies  AgencyWriter
	contacts  ContactWriter
	chunkSize int
	now       func() time.Time
	logger    *log.Entry
}

// NewImporter creates a new Importer
func NewImporter(parser *Parser, agencies AgencyWriter, contacts ContactWriter, logger *log.Entry) *Importer {
	if logger == nil {
		logger = log.WithField("component", "importer")
	}
	return &Importer{
		parser:    parser,
		agencies:  agencies,
		contacts:  contacts,
		chunkSize: DefaultChunkSize,
		now:       time.Now,
		logger:    logger,
	}
}

// Import seeds agencies then contacts. A missing file is skipped with a
// warning. Contacts only keep an agency reference when that agency was
// present in this run's agency file.
func (i *Importer) Import(ctx context.Context, agenciesPath, contactsPath string) (*ImportStats, error) {
	stats := &ImportStats{}
	i.logger.Info("Start seeding...")

	validAgencyIDs, err := i.importAgencies(ctx, agenciesPath, stats)
	if err != nil {
		return stats, err
	}

	if err := i.importContacts(ctx, contactsPath, validAgencyIDs, stats); err != nil {
		return stats, err
	}

	i.logger.Info("Seeding finished.")
	return stats, nil
}

func (i *Importer) importAgencies(ctx context.Context, path string, stats *ImportStats) (map[string]bool, error) {
	valid := make(map[string]bool)

	f, err := i.open(path, "Agencies")
	if err != nil || f == nil {
		return valid, err
	}
	defer f.Close()

	rows, err := i.parser.ParseAgencies(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	stats.AgenciesRead = len(rows)
	i.logger.Infof("Found %d agencies. Inserting...", len(rows))

	if err := i.insertAgencies(ctx, rows, valid, stats); err != nil {
		return nil, err
	}
	i.logger.Info("Agencies seeded.")

	return valid, nil
}

func (i *Importer) insertAgencies(ctx context.Context, rows []model.AgencyRow, valid map[string]bool, stats *ImportStats) error {
	for idx, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		agency := &model.Agency{
			ID:         row.ID,
			Name:       row.Name,
			State:      row.State,
			Type:       row.Type,
			Population: ParsePopulation(row.Population),
			Website:    nullString(row.Website),
		}
		if agency.ID == "" {
			agency.ID = uuid.NewString()
		}

		inserted, err := i.agencies.InsertAgency(ctx, agency)
		if err != nil {
			i.logger.WithError(err).Warnf("[%d/%d] Failed to insert agency %s", idx+1, len(rows), agency.ID)
			stats.AgenciesFailed++
			continue
		}

		valid[agency.ID] = true
		if inserted {
			stats.AgenciesInserted++
		} else {
			stats.AgenciesExisting++
		}
	}
	return nil
}

func (i *Importer) importContacts(ctx context.Context, path string, validAgencyIDs map[string]bool, stats *ImportStats) error {
	f, err := i.open(path, "Contacts")
	if err != nil || f == nil {
		return err
	}
	defer f.Close()

	rows, err := i.parser.ParseContacts(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	stats.ContactsRead = len(rows)
	i.logger.Infof("Found %d contacts. Inserting...", len(rows))

	if err := i.insertContacts(ctx, rows, validAgencyIDs, stats); err != nil {
		return err
	}
	i.logger.Info("Contacts seeded.")

	return nil
}

func (i *Importer) insertContacts(ctx context.Context, rows []model.ContactRow, validAgencyIDs map[string]bool, stats *ImportStats) error {
	now := i.now()

	for start := 0; start < len(rows); start += i.chunkSize {
		end := min(start+i.chunkSize, len(rows))

		chunk := make([]model.Contact, 0, end-start)
		for _, row := range rows[start:end] {
			contact := model.Contact{
				ID:         row.ID,
				FirstName:  row.FirstName,
				LastName:   row.LastName,
				Title:      row.Title,
				Department: row.Department,
				Email:      row.Email,
				Phone:      row.Phone,
				CreatedAt:  ParseCreatedAt(row.CreatedAt, now),
			}
			if contact.ID == "" {
				contact.ID = uuid.NewString()
			}
			if row.AgencyID != "" {
				if validAgencyIDs[row.AgencyID] {
					contact.AgencyID = nullString(row.AgencyID)
				} else {
					stats.ContactsUnlinked++
				}
			}
			chunk = append(chunk, contact)
		}

		inserted, err := i.contacts.InsertContacts(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to insert contacts %d-%d: %w", start+1, end, err)
		}
		stats.ContactsInserted += inserted
		stats.ContactsExisting += len(chunk) - inserted
		i.logger.Debugf("Inserted contacts %d-%d of %d", start+1, end, len(rows))
	}

	return nil
}

// open returns nil without error when the file does not exist
func (i *Importer) open(path, label string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		i.logger.Warnf("%s file not found at %s", label, path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	i.logger.Infof("Reading %s from %s", label, path)
	return f, nil
}

// PrintSummary prints the import statistics
func (i *Importer) PrintSummary(stats *ImportStats) {
	i.logger.Info("")
	i.logger.Info("=== Seed Summary ===")
	i.logger.Infof("Agencies read:      %d", stats.AgenciesRead)
	i.logger.Infof("  Inserted:         %d", stats.AgenciesInserted)
	i.logger.Infof("  Already present:  %d", stats.AgenciesExisting)
	i.logger.Infof("  Failed:           %d", stats.AgenciesFailed)
	i.logger.Infof("Contacts read:      %d", stats.ContactsRead)
	i.logger.Infof("  Inserted:         %d", stats.ContactsInserted)
	i.logger.Infof("  Already present:  %d", stats.ContactsExisting)
	i.logger.Infof("  Agency unlinked:  %d", stats.ContactsUnlinked)
}
