package flatfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/weilandt/circ-api/internal/domain"
	"github.com/weilandt/circ-api/internal/store"
)

const (
	// delimiter joins the fields of one record.
	delimiter = "|"

	// dateLayout is the ISO calendar date format used for loan dates.
	dateLayout = "2006-01-02"
)

// Config holds the paths of the four data files.
type Config struct {
	MediaPath  string
	UsersPath  string
	LoansPath  string
	AdminsPath string
}

// DefaultConfig places the four data files under dir with conventional names.
func DefaultConfig(dir string) Config {
	return Config{
		MediaPath:  filepath.Join(dir, "media.txt"),
		UsersPath:  filepath.Join(dir, "users.txt"),
		LoansPath:  filepath.Join(dir, "loans.txt"),
		AdminsPath: filepath.Join(dir, "admins.txt"),
	}
}

// loanEntry tracks which user owns a loan record; the loans file is keyed by
// user name, not by record ID.
type loanEntry struct {
	loan     *domain.LoanRecord
	username string
}

// DB is the in-memory data set backing all four stores. All access goes
// through one mutex; the file writes happen while it is held, so a save
// always snapshots a consistent state.
type DB struct {
	mu     sync.Mutex
	cfg    Config
	logger *slog.Logger

	media     []*domain.MediaItem
	mediaByID map[string]*domain.MediaItem

	users     []*domain.User
	userIndex map[string]*domain.User // keyed by lowercased name

	loans map[uuid.UUID]*loanEntry

	admins []*domain.Admin
}

// Open loads the data files into memory and returns the database. Missing
// files yield empty stores rather than errors; malformed lines are skipped
// individually with a warning. Loan records are re-attached to their users
// and each active loan takes one copy of its media item off the shelf, so
// availability is reconstructed from the loan history.
func Open(cfg Config, logger *slog.Logger) (*DB, error) {
	db := &DB{
		cfg:       cfg,
		logger:    logger.With("component", "flatfile"),
		mediaByID: make(map[string]*domain.MediaItem),
		userIndex: make(map[string]*domain.User),
		loans:     make(map[uuid.UUID]*loanEntry),
	}

	for _, path := range []string{cfg.MediaPath, cfg.UsersPath, cfg.LoansPath, cfg.AdminsPath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
			}
		}
	}

	db.loadMedia()
	db.loadUsers()
	db.loadAdmins()
	db.loadLoans()

	return db, nil
}

// MediaStore returns the catalog store backed by this database.
func (db *DB) MediaStore() store.MediaStore { return &mediaStore{db} }

// UserStore returns the member store backed by this database.
func (db *DB) UserStore() store.UserStore { return &userStore{db} }

// LoanStore returns the loan record store backed by this database.
func (db *DB) LoanStore() store.LoanStore { return &loanStore{db} }

// AdminStore returns the admin credential store backed by this database.
func (db *DB) AdminStore() store.AdminStore { return &adminStore{db} }

// readLines returns the lines of path, skipping blank ones. A missing file
// is not an error; it reads as empty.
func (db *DB) readLines(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			db.logger.Warn("failed to read data file, starting empty",
				"path", path,
				"error", err)
		}
		return nil
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// writeFile rewrites path with the given records, one per line.
func (db *DB) writeFile(path string, lines []string) error {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		db.logger.Error("failed to write data file", "path", path, "error", err)
		return err
	}
	return nil
}

func parseCategory(s string) (domain.Category, bool) {
	switch domain.Category(strings.ToLower(s)) {
	case domain.CategoryBook:
		return domain.CategoryBook, true
	case domain.CategoryCD:
		return domain.CategoryCD, true
	default:
		return "", false
	}
}

// loadMedia reads the catalog file: id|title|author|category|totalCopies.
func (db *DB) loadMedia() {
	for i, line := range db.readLines(db.cfg.MediaPath) {
		fields := strings.Split(line, delimiter)
		if len(fields) != 5 {
			db.logger.Warn("skipping malformed media record",
				"path", db.cfg.MediaPath, "line", i+1, "fields", len(fields))
			continue
		}

		category, ok := parseCategory(fields[3])
		if !ok {
			db.logger.Warn("skipping media record with unknown category",
				"path", db.cfg.MediaPath, "line", i+1, "category", fields[3])
			continue
		}

		total, err := strconv.Atoi(fields[4])
		if err != nil {
			db.logger.Warn("skipping media record with bad copy count",
				"path", db.cfg.MediaPath, "line", i+1, "error", err)
			continue
		}

		item, err := domain.NewMediaItem(fields[0], fields[1], fields[2], category, total)
		if err != nil {
			db.logger.Warn("skipping invalid media record",
				"path", db.cfg.MediaPath, "line", i+1, "error", err)
			continue
		}

		if _, exists := db.mediaByID[item.ID]; exists {
			db.logger.Warn("skipping duplicate media record",
				"path", db.cfg.MediaPath, "line", i+1, "media_id", item.ID)
			continue
		}

		db.media = append(db.media, item)
		db.mediaByID[item.ID] = item
	}
}

// loadUsers reads the users file: name|password|email|fineBalance|blocked.
// The blocked field is parsed for format fidelity but the in-memory state is
// always derived from the balance.
func (db *DB) loadUsers() {
	for i, line := range db.readLines(db.cfg.UsersPath) {
		fields := strings.Split(line, delimiter)
		if len(fields) != 5 {
			db.logger.Warn("skipping malformed user record",
				"path", db.cfg.UsersPath, "line", i+1, "fields", len(fields))
			continue
		}

		balance, err := decimal.NewFromString(fields[3])
		if err != nil {
			db.logger.Warn("skipping user record with bad fine balance",
				"path", db.cfg.UsersPath, "line", i+1, "error", err)
			continue
		}

		if _, err := strconv.ParseBool(fields[4]); err != nil {
			db.logger.Warn("skipping user record with bad blocked flag",
				"path", db.cfg.UsersPath, "line", i+1, "error", err)
			continue
		}

		user := &domain.User{
			Name:           fields[0],
			HashedPassword: fields[1],
			Email:          fields[2],
			FineBalance:    balance,
		}
		if err := user.Validate(); err != nil {
			db.logger.Warn("skipping invalid user record",
				"path", db.cfg.UsersPath, "line", i+1, "error", err)
			continue
		}

		key := strings.ToLower(user.Name)
		if _, exists := db.userIndex[key]; exists {
			db.logger.Warn("skipping duplicate user record",
				"path", db.cfg.UsersPath, "line", i+1, "name", user.Name)
			continue
		}

		db.users = append(db.users, user)
		db.userIndex[key] = user
	}
}

// loadAdmins reads the admin credential file: username|password.
func (db *DB) loadAdmins() {
	for i, line := range db.readLines(db.cfg.AdminsPath) {
		fields := strings.Split(line, delimiter)
		if len(fields) != 2 {
			db.logger.Warn("skipping corrupted admin record",
				"path", db.cfg.AdminsPath, "line", i+1, "fields", len(fields))
			continue
		}

		admin, err := domain.NewAdmin(fields[0], fields[1])
		if err != nil {
			db.logger.Warn("skipping invalid admin record",
				"path", db.cfg.AdminsPath, "line", i+1, "error", err)
			continue
		}

		db.admins = append(db.admins, admin)
	}
}

// loadLoans reads the loans file: username|mediaID|borrowDate|dueDate|returned|fine.
// A record naming an unknown user or media item is skipped like a malformed
// line. Active loans decrement their item's availability; a posted fine is
// recognized by a non-zero fine amount.
func (db *DB) loadLoans() {
	for i, line := range db.readLines(db.cfg.LoansPath) {
		fields := strings.Split(line, delimiter)
		if len(fields) != 6 {
			db.logger.Warn("skipping malformed loan record",
				"path", db.cfg.LoansPath, "line", i+1, "fields", len(fields))
			continue
		}

		user, ok := db.userIndex[strings.ToLower(fields[0])]
		if !ok {
			db.logger.Warn("skipping loan record for unknown user",
				"path", db.cfg.LoansPath, "line", i+1, "name", fields[0])
			continue
		}

		media, ok := db.mediaByID[fields[1]]
		if !ok {
			db.logger.Warn("skipping loan record for unknown media",
				"path", db.cfg.LoansPath, "line", i+1, "media_id", fields[1])
			continue
		}

		borrowedAt, err := time.Parse(dateLayout, fields[2])
		if err != nil {
			db.logger.Warn("skipping loan record with bad borrow date",
				"path", db.cfg.LoansPath, "line", i+1, "error", err)
			continue
		}

		dueAt, err := time.Parse(dateLayout, fields[3])
		if err != nil {
			db.logger.Warn("skipping loan record with bad due date",
				"path", db.cfg.LoansPath, "line", i+1, "error", err)
			continue
		}

		returned, err := strconv.ParseBool(fields[4])
		if err != nil {
			db.logger.Warn("skipping loan record with bad returned flag",
				"path", db.cfg.LoansPath, "line", i+1, "error", err)
			continue
		}

		fine, err := decimal.NewFromString(fields[5])
		if err != nil {
			db.logger.Warn("skipping loan record with bad fine amount",
				"path", db.cfg.LoansPath, "line", i+1, "error", err)
			continue
		}

		if !returned {
			if err := media.BorrowCopy(); err != nil {
				db.logger.Warn("skipping loan record exceeding media copies",
					"path", db.cfg.LoansPath, "line", i+1, "media_id", media.ID)
				continue
			}
		}

		loan := &domain.LoanRecord{
			ID:         uuid.New(),
			Media:      media,
			BorrowedAt: borrowedAt,
			DueAt:      dueAt,
			Returned:   returned,
			FinePosted: !fine.IsZero(),
			FineAmount: fine,
		}

		user.Loans = append(user.Loans, loan)
		db.loans[loan.ID] = &loanEntry{loan: loan, username: user.Name}
	}
}

// saveMedia rewrites the catalog file. Caller holds db.mu.
func (db *DB) saveMedia() error {
	lines := make([]string, 0, len(db.media))
	for _, m := range db.media {
		lines = append(lines, strings.Join([]string{
			m.ID,
			m.Title,
			m.Author,
			string(m.Category),
			strconv.Itoa(m.TotalCopies),
		}, delimiter))
	}
	if err := db.writeFile(db.cfg.MediaPath, lines); err != nil {
		return store.NewStoreError("media", "save", "failed to rewrite catalog file", err)
	}
	return nil
}

// saveUsers rewrites the users file. Caller holds db.mu.
func (db *DB) saveUsers() error {
	lines := make([]string, 0, len(db.users))
	for _, u := range db.users {
		lines = append(lines, strings.Join([]string{
			u.Name,
			u.HashedPassword,
			u.Email,
			u.FineBalance.String(),
			strconv.FormatBool(u.IsBlocked()),
		}, delimiter))
	}
	if err := db.writeFile(db.cfg.UsersPath, lines); err != nil {
		return store.NewStoreError("user", "save", "failed to rewrite users file", err)
	}
	return nil
}

// saveLoans rewrites the loans file from the users' loan collections so
// records stay grouped by owner in borrow order. Caller holds db.mu.
func (db *DB) saveLoans() error {
	var lines []string
	for _, u := range db.users {
		for _, l := range u.Loans {
			lines = append(lines, strings.Join([]string{
				u.Name,
				l.Media.ID,
				l.BorrowedAt.UTC().Format(dateLayout),
				l.DueAt.UTC().Format(dateLayout),
				strconv.FormatBool(l.Returned),
				l.FineAmount.String(),
			}, delimiter))
		}
	}
	if err := db.writeFile(db.cfg.LoansPath, lines); err != nil {
		return store.NewStoreError("loan", "save", "failed to rewrite loans file", err)
	}
	return nil
}

// saveAdmins rewrites the admin credential file. Caller holds db.mu.
func (db *DB) saveAdmins() error {
	lines := make([]string, 0, len(db.admins))
	for _, a := range db.admins {
		lines = append(lines, strings.Join([]string{a.Name, a.HashedPassword}, delimiter))
	}
	if err := db.writeFile(db.cfg.AdminsPath, lines); err != nil {
		return store.NewStoreError("admin", "save", "failed to rewrite admins file", err)
	}
	return nil
}
