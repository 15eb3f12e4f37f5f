// Package google mirrors admin data into Google Sheets.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	usersSheet   = "Users"
	rentalsSheet = "Rentals"

	stampLayout = "2006-01-02 15:04:05"
)

var (
	userHeaders   = []interface{}{"ID", "Name", "Email", "Phone", "Role", "Wallet Balance", "Pending Balance"}
	rentalHeaders = []interface{}{"ID", "Request ID", "Listing", "Lender", "Borrower", "Start Date", "End Date", "Total Amount", "Status", "Escrow Status", "Created At", "Synced At"}
)

type SheetsService struct {
	service        *sheets.Service
	usersSheetID   string
	rentalsSheetID string
	now            func() time.Time

	mu       sync.RWMutex
	rowCache map[string]int
}

// NewSheetsService authenticates with a service account key file.
func NewSheetsService(ctx context.Context, credentialsFile, usersSheetID, rentalsSheetID string) (*SheetsService, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return newSheetsService(srv, usersSheetID, rentalsSheetID), nil
}

func newSheetsService(srv *sheets.Service, usersSheetID, rentalsSheetID string) *SheetsService {
	return &SheetsService{
		service:        srv,
		usersSheetID:   usersSheetID,
		rentalsSheetID: rentalsSheetID,
		now:            time.Now,
		rowCache:       make(map[string]int),
	}
}

// TestConnection reads the first cell of the users sheet.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.usersSheetID, usersSheet+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// ServiceAccountEmail is the address the spreadsheets must be shared with.
func ServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}
	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}
	return creds.ClientEmail, nil
}

// UpdateUsersSheet rewrites the users sheet.
func (s *SheetsService) UpdateUsersSheet(ctx context.Context, users []models.User) error {
	values := [][]interface{}{userHeaders}
	for _, u := range users {
		values = append(values, []interface{}{
			u.ID, u.Name, u.Email, u.Phone, string(u.Role), u.WalletBalance, u.PendingBalance,
		})
	}

	rng := fmt.Sprintf("%s!A1:G%d", usersSheet, len(values))
	_, err := s.service.Spreadsheets.Values.Update(s.usersSheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (s *SheetsService) rentalRow(r models.ActiveRental) []interface{} {
	return []interface{}{
		r.ID,
		r.Request,
		r.Listing.Label(),
		r.Lender.Label(),
		r.Borrower.Label(),
		r.StartDate.Format(models.DateLayout),
		r.EndDate.Format(models.DateLayout),
		r.TotalAmount,
		string(r.Status),
		string(r.EscrowStatus),
		r.CreatedAt.Format(stampLayout),
		s.now().Format(stampLayout),
	}
}

// UpdateRentalsSheet rewrites the rentals sheet and rebuilds the row cache.
func (s *SheetsService) UpdateRentalsSheet(ctx context.Context, rentals []models.ActiveRental) error {
	values := [][]interface{}{rentalHeaders}
	rows := make(map[string]int, len(rentals))
	for i, r := range rentals {
		values = append(values, s.rentalRow(r))
		rows[r.ID] = i + 2
	}

	rng := fmt.Sprintf("%s!A1:L%d", rentalsSheet, len(values))
	_, err := s.service.Spreadsheets.Values.Update(s.rentalsSheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.rowCache = rows
	s.mu.Unlock()
	return nil
}

// WarmUpCache maps rental ids to sheet rows from column A.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.rentalsSheetID, rentalsSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read rental ids: %w", err)
	}

	rows := make(map[string]int, len(resp.Values))
	for i, row := range resp.Values {
		if i == 0 || len(row) == 0 {
			continue
		}
		if id := fmt.Sprint(row[0]); id != "" {
			rows[id] = i + 1
		}
	}

	s.mu.Lock()
	s.rowCache = rows
	s.mu.Unlock()
	return nil
}

func (s *SheetsService) getCachedRow(id string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id string, row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowCache[id] = row
}

var rowPattern = regexp.MustCompile(`![A-Z]+(\d+)`)

// rowFromRange extracts the first row number of an A1 range.
func rowFromRange(rng string) (int, bool) {
	m := rowPattern.FindStringSubmatch(rng)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

// AppendRental adds a rental at the end of the sheet.
func (s *SheetsService) AppendRental(ctx context.Context, r models.ActiveRental) error {
	resp, err := s.service.Spreadsheets.Values.Append(s.rentalsSheetID, rentalsSheet+"!A:A",
		&sheets.ValueRange{Values: [][]interface{}{s.rentalRow(r)}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}
	if resp.Updates != nil {
		if row, ok := rowFromRange(resp.Updates.UpdatedRange); ok {
			s.setCachedRow(r.ID, row)
		}
	}
	return nil
}

// UpsertRental rewrites the rental's row when it is known, otherwise appends.
func (s *SheetsService) UpsertRental(ctx context.Context, r models.ActiveRental) error {
	row, ok := s.getCachedRow(r.ID)
	if !ok {
		return s.AppendRental(ctx, r)
	}
	rng := fmt.Sprintf("%s!A%d:L%d", rentalsSheet, row, row)
	_, err := s.service.Spreadsheets.Values.Update(s.rentalsSheetID, rng,
		&sheets.ValueRange{Values: [][]interface{}{s.rentalRow(r)}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// UpdateEscrowStatus touches only the status columns of a cached row.
func (s *SheetsService) UpdateEscrowStatus(ctx context.Context, id string, status models.RentalStatus, escrow models.EscrowStatus) error {
	row, ok := s.getCachedRow(id)
	if !ok {
		return fmt.Errorf("rental %s not in sheet", id)
	}
	rng := fmt.Sprintf("%s!I%d:J%d", rentalsSheet, row, row)
	_, err := s.service.Spreadsheets.Values.Update(s.rentalsSheetID, rng,
		&sheets.ValueRange{Values: [][]interface{}{{string(status), string(escrow)}}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	rng = fmt.Sprintf("%s!L%d:L%d", rentalsSheet, row, row)
	_, err = s.service.Spreadsheets.Values.Update(s.rentalsSheetID, rng,
		&sheets.ValueRange{Values: [][]interface{}{{s.now().Format(stampLayout)}}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// SheetID resolves a tab title to its numeric id.
func (s *SheetsService) SheetID(ctx context.Context, spreadsheetID, title string) (int64, error) {
	resp, err := s.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, sh := range resp.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", title)
}
