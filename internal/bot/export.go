package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/areahoodnigeria/client-app-sub001/internal/admin"
	"github.com/areahoodnigeria/client-app-sub001/internal/directory"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/areahoodnigeria/client-app-sub001/internal/rentals"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"
)

// maxReviewPages bounds the reviews pulled into an organization export.
const maxReviewPages = 20

type sheet struct {
	name   string
	header []string
	rows   [][]interface{}
}

func requestsSheet(name string, reqs []models.RentalRequest) sheet {
	s := sheet{
		name:   name,
		header: []string{"ID", "Listing", "Borrower", "Owner", "Start", "End", "Total (NGN)", "Status", "Paid", "Message", "Rejection reason", "Created"},
	}
	for _, r := range reqs {
		s.rows = append(s.rows, []interface{}{
			r.ID, r.Listing.Label(), r.Borrower.Label(), r.Lender.Label(),
			r.StartDate.Day(), r.EndDate.Day(), r.TotalPrice, string(r.Status),
			yesNo(r.IsPaid), r.Message, r.RejectionReason, r.CreatedAt.Day(),
		})
	}
	return s
}

func rentalsSheet(name string, list []models.ActiveRental) sheet {
	s := sheet{
		name:   name,
		header: []string{"ID", "Listing", "Owner", "Borrower", "Start", "End", "Amount (NGN)", "Status", "Escrow", "Created"},
	}
	for _, r := range list {
		s.rows = append(s.rows, []interface{}{
			r.ID, r.Listing.Label(), r.Lender.Label(), r.Borrower.Label(),
			r.StartDate.Day(), r.EndDate.Day(), r.TotalAmount, string(r.Status),
			string(r.EscrowStatus), r.CreatedAt.Day(),
		})
	}
	return s
}

func usersSheet(users []models.User) sheet {
	s := sheet{
		name:   "Users",
		header: []string{"ID", "Name", "Email", "Phone", "Role", "Wallet (NGN)", "Escrow (NGN)"},
	}
	for _, u := range users {
		s.rows = append(s.rows, []interface{}{
			u.ID, u.Name, u.Email, u.Phone, string(u.Role), u.WalletBalance, u.PendingBalance,
		})
	}
	return s
}

func reviewsSheet(reviews []models.Review) sheet {
	s := sheet{
		name:   "Reviews",
		header: []string{"ID", "Reviewer", "Rating", "Comment", "Date"},
	}
	for _, r := range reviews {
		s.rows = append(s.rows, []interface{}{r.ID, r.Reviewer.Label(), r.Rating, r.Comment, r.CreatedAt.Day()})
	}
	return s
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// writeWorkbook saves sheets into one xlsx file with styled headers.
func writeWorkbook(path string, sheets []sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return fmt.Errorf("error renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("error creating sheet %s: %w", sh.name, err)
		}

		for col, h := range sh.header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sh.name, cell, h)
		}
		if n := len(sh.header); n > 0 {
			last, _ := excelize.CoordinatesToCellName(n, 1)
			f.SetCellStyle(sh.name, "A1", last, headerStyle)
			lastCol, _ := excelize.ColumnNumberToName(n)
			f.SetColWidth(sh.name, "A", lastCol, 18)
		}

		for r, row := range sh.rows {
			for col, v := range row {
				cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
				f.SetCellValue(sh.name, cell, v)
			}
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

func (b *Bot) exportSheets(ctx context.Context, chatID int64, role models.Role) ([]sheet, error) {
	s := b.session(chatID)
	switch role {
	case models.RoleAdmin:
		c := admin.New(s)
		users, err := c.AllUsers(ctx)
		if err != nil {
			return nil, err
		}
		all, err := c.AllRentals(ctx)
		if err != nil {
			return nil, err
		}
		return []sheet{usersSheet(users), rentalsSheet("Rentals", all)}, nil

	case models.RoleOrganization:
		c := directory.New(s)
		l, err := c.MyBusinessListing(ctx)
		if err != nil {
			return nil, err
		}
		var reviews []models.Review
		for page := 1; page <= maxReviewPages; page++ {
			p, err := c.Reviews(ctx, l.ID, directory.Query{Page: page, Limit: 100})
			if err != nil {
				return nil, err
			}
			reviews = append(reviews, p.Items...)
			if !p.HasNext() {
				break
			}
		}
		return []sheet{reviewsSheet(reviews)}, nil

	default:
		c := rentals.New(s)
		incoming, err := c.LenderRequests(ctx)
		if err != nil {
			return nil, err
		}
		outgoing, err := c.BorrowerRequests(ctx)
		if err != nil {
			return nil, err
		}
		lending, err := c.Active(ctx, rentals.Lender)
		if err != nil {
			return nil, err
		}
		borrowing, err := c.Active(ctx, rentals.Borrower)
		if err != nil {
			return nil, err
		}
		return []sheet{
			requestsSheet("Incoming requests", incoming),
			requestsSheet("My requests", outgoing),
			rentalsSheet("Lending", lending),
			rentalsSheet("Borrowing", borrowing),
		}, nil
	}
}

func (b *Bot) export(ctx context.Context, chatID int64) {
	a := b.requireAuth(ctx, chatID)
	if a == nil {
		return
	}
	b.reply(chatID, "📊 Preparing your export…")

	sheets, err := b.exportSheets(ctx, chatID, a.User.Role)
	if err != nil {
		b.fail(chatID, "export", err)
		return
	}

	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		b.log.Error().Err(err).Str("path", b.config.Exports.Path).Msg("failed to create export directory")
		b.reply(chatID, "⚠️ Could not prepare the export. Please try again later.")
		return
	}
	name := fmt.Sprintf("areahood_%s_%d_%s.xlsx", a.User.Role, chatID, time.Now().Format("20060102_150405"))
	path := filepath.Join(b.config.Exports.Path, name)
	if err := writeWorkbook(path, sheets); err != nil {
		b.log.Error().Err(err).Str("file", path).Msg("failed to write export")
		b.reply(chatID, "⚠️ Could not prepare the export. Please try again later.")
		return
	}
	defer os.Remove(path)

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = "📊 Your Area Hood export"
	if _, err := b.tg.Send(doc); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send export")
		b.reply(chatID, "⚠️ Could not send the export file.")
	}
}
