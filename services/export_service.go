package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"deptsurvey/models"
	"deptsurvey/repository"
	"deptsurvey/utils"

	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// ErrNoData means the export matched nothing; callers answer with a message instead of a file.
var ErrNoData = errors.New("no data for export")

// Export types
const (
	ExportSubmittedByMe     = "submitted-by-me"
	ExportDepartmentRatings = "department-ratings"
	ExportRemarksOnly       = "remarks-only"
)

// Export formats
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
	notAvailable    = "N/A"
)

var exportTypeAliases = map[string]string{
	"my submitted surveys":   ExportSubmittedByMe,
	"submitted-by-me":        ExportSubmittedByMe,
	"department ratings":     ExportDepartmentRatings,
	"department-ratings":     ExportDepartmentRatings,
	"submitted remarks only": ExportRemarksOnly,
	"remarks-only":           ExportRemarksOnly,
}

// ParseExportType accepts both the display names and the short keys.
func ParseExportType(s string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return "", invalid("export type is required")
	}
	if canonical, ok := exportTypeAliases[t]; ok {
		return canonical, nil
	}
	return "", invalid("invalid export type %q", s)
}

var periodDays = map[string]int{
	"last_7_days":   7,
	"last_30_days":  30,
	"last_3_months": 90,
	"last_90_days":  90,
	"last_6_months": 180,
	"last_180_days": 180,
	"last_year":     365,
	"last_365_days": 365,
	"all_time":      0,
}

// PeriodStart returns the first instant of the window, nil for all time.
// Windows start at midnight UTC, days before the current date.
func PeriodStart(period string, now time.Time) (*time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	if p == "" {
		p = "all_time"
	}
	days, ok := periodDays[p]
	if !ok {
		return nil, invalid("invalid time period %q", period)
	}
	if days == 0 {
		return nil, nil
	}
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)
	return &start, nil
}

// ParseFormat defaults to xlsx.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatXLSX, "excel":
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", invalid("invalid export format %q", s)
	}
}

// Table is one report ready for serialization.
type Table struct {
	Sheet    string
	Filename string
	Header   []string
	Rows     [][]any
}

// ExportFile is a rendered report.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService builds tabular reports over submissions.
type ExportService struct {
	Submissions repository.SubmissionRepository
	Logger      *logrus.Logger

	now func() time.Time
}

func (s *ExportService) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

// Export renders report exportType over period as format. It returns
// ErrNoData when nothing matches.
func (s *ExportService) Export(ctx context.Context, user *models.User, exportType, period, format string) (*ExportFile, error) {
	typ, err := ParseExportType(exportType)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	since, err := PeriodStart(period, now)
	if err != nil {
		return nil, err
	}
	fmtName, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	table, err := s.BuildTable(ctx, user, typ, since)
	if err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("no %s rows for period %q: %w", typ, period, ErrNoData)
	}

	file := &ExportFile{Filename: fmt.Sprintf("%s_%s.%s", table.Filename, now.Format("20060102_150405"), fmtName)}
	switch fmtName {
	case FormatPDF:
		file.ContentType = contentTypePDF
		file.Data, err = renderPDF(table, now)
	default:
		file.ContentType = contentTypeXLSX
		file.Data, err = renderXLSX(table)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", fmtName, err)
	}

	s.Logger.WithFields(logrus.Fields{
		"operation": "Export",
		"type":      typ,
		"period":    period,
		"format":    fmtName,
		"rows":      len(table.Rows),
		"username":  user.Username,
	}).Info("Export generated")
	return file, nil
}

// BuildTable assembles the rows of one report type.
func (s *ExportService) BuildTable(ctx context.Context, user *models.User, typ string, since *time.Time) (*Table, error) {
	filter := repository.SubmissionFilter{Since: since}
	if typ == ExportSubmittedByMe {
		filter.SubmitterUserID = user.ID
	}
	subs, err := s.Submissions.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	switch typ {
	case ExportSubmittedByMe:
		return submittedByMeTable(subs), nil
	case ExportDepartmentRatings:
		return departmentRatingsTable(subs), nil
	case ExportRemarksOnly:
		return remarksTable(subs), nil
	}
	return nil, invalid("invalid export type %q", typ)
}

func orNA(p *string) any {
	if p == nil || *p == "" {
		return notAvailable
	}
	return *p
}

func deptName(d *models.Department) any {
	if d == nil {
		return notAvailable
	}
	return d.Name
}

func submissionDate(sub models.SurveySubmission) string {
	if sub.SubmittedAt.IsZero() {
		return notAvailable
	}
	return sub.SubmittedAt.UTC().Format("2006-01-02")
}

func surveyTitle(sub models.SurveySubmission) any {
	if sub.Survey == nil {
		return notAvailable
	}
	return sub.Survey.Title
}

func submitterField(sub models.SurveySubmission, name bool) any {
	if sub.Submitter == nil {
		return notAvailable
	}
	if name {
		return sub.Submitter.Name
	}
	return sub.Submitter.Username
}

func category(q *models.Question) any {
	if q == nil || q.Category == "" {
		return notAvailable
	}
	return q.Category
}

func submittedByMeTable(subs []models.SurveySubmission) *Table {
	t := &Table{
		Sheet:    "My Submitted Surveys",
		Filename: "my_submitted_surveys",
		Header: []string{
			"Survey ID", "Survey Title", "Department Rated", "Submitted By User", "Submitted By Name",
			"Submitted By Dept", "Date", "Question Category", "Question", "Question Type", "Rating (1-5)",
			"Selected Option", "Remarks", "Overall Rating (%)", "Rating Description", "Suggestions",
		},
	}
	for _, sub := range subs {
		for _, a := range sub.Answers {
			if a.Question == nil {
				continue
			}
			var rating any = notAvailable
			if a.RatingValue != nil {
				rating = *a.RatingValue
			}
			var option any = notAvailable
			if a.SelectedOption != nil {
				option = a.SelectedOption.Text
			}
			var overall any = notAvailable
			if sub.OverallCustomerRating != nil {
				overall = *sub.OverallCustomerRating
			}
			t.Rows = append(t.Rows, []any{
				sub.ID, surveyTitle(sub), deptName(sub.RatedDepartment), submitterField(sub, false),
				submitterField(sub, true), deptName(sub.SubmitterDepartment), submissionDate(sub),
				category(a.Question), a.Question.Text, a.Question.Type, rating, option,
				orNA(a.TextResponse), overall, orNA(sub.RatingDescription), orNA(sub.Suggestions),
			})
		}
	}
	return t
}

// RatingCategories are the question categories averaged in the department report.
var RatingCategories = []string{"Quality", "Delivery", "Communication", "Responsiveness", "Improvement"}

type deptSummary struct {
	id       uint
	name     any
	total    float64
	count    int
	category map[string][]float64
}

func departmentRatingsTable(subs []models.SurveySubmission) *Table {
	t := &Table{
		Sheet:    "Department Ratings",
		Filename: "department_ratings",
		Header:   []string{"Department ID", "Department Name", "Average Overall Rating (%)", "Rating Description"},
	}
	for _, c := range RatingCategories {
		t.Header = append(t.Header, "Average "+c+" (1-5)")
	}
	t.Header = append(t.Header, "Number of Surveys")

	var order []uint
	summaries := map[uint]*deptSummary{}
	for _, sub := range subs {
		ds, ok := summaries[sub.RatedDepartmentID]
		if !ok {
			ds = &deptSummary{id: sub.RatedDepartmentID, name: deptName(sub.RatedDepartment), category: map[string][]float64{}}
			if sub.RatedDepartment == nil {
				ds.name = sub.RatedDepartmentID
			}
			summaries[sub.RatedDepartmentID] = ds
			order = append(order, sub.RatedDepartmentID)
		}
		if sub.OverallCustomerRating != nil {
			ds.total += *sub.OverallCustomerRating
			ds.count++
		}

		// per submission category means, averaged again per department
		perSub := map[string][]int{}
		for _, a := range sub.Answers {
			if a.Question == nil || a.RatingValue == nil {
				continue
			}
			for _, c := range RatingCategories {
				if strings.EqualFold(strings.TrimSpace(a.Question.Category), c) {
					perSub[c] = append(perSub[c], *a.RatingValue)
				}
			}
		}
		for c, ratings := range perSub {
			sum := 0
			for _, r := range ratings {
				sum += r
			}
			ds.category[c] = append(ds.category[c], float64(sum)/float64(len(ratings)))
		}
	}

	for _, id := range order {
		ds := summaries[id]
		avg := 0.0
		if ds.count > 0 {
			avg = round2(ds.total / float64(ds.count))
		}
		row := []any{ds.id, ds.name, avg, RatingBand(avg)}
		for _, c := range RatingCategories {
			row = append(row, mean(ds.category[c]))
		}
		row = append(row, ds.count)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return round2(sum / float64(len(vs)))
}

func remarksTable(subs []models.SurveySubmission) *Table {
	t := &Table{
		Sheet:    "Submitted Remarks",
		Filename: "submitted_remarks",
		Header: []string{
			"Survey ID", "Survey Title", "Department Rated", "Submitted By User", "Submitted By Dept", "Date",
			"Question Category", "Question", "Rating (1-5)", "Remarks", "Response Explanation",
			"Response Action Plan", "Response Responsible Person", "Response Date", "Responded By Dept",
		},
	}
	for _, sub := range subs {
		for _, a := range sub.Answers {
			if a.TextResponse == nil || *a.TextResponse == "" {
				continue
			}
			var question any = notAvailable
			if a.Question != nil {
				question = a.Question.Text
			}
			var rating any = notAvailable
			if a.RatingValue != nil {
				rating = *a.RatingValue
			}
			row := []any{
				sub.ID, surveyTitle(sub), deptName(sub.RatedDepartment), submitterField(sub, false),
				deptName(sub.SubmitterDepartment), submissionDate(sub), category(a.Question), question,
				rating, *a.TextResponse,
			}
			if r := sub.ResponseFor(a.QuestionID); r != nil {
				row = append(row, r.Explanation, r.ActionPlan, r.ResponsiblePerson,
					r.RespondedAt.UTC().Format("2006-01-02"), deptName(r.RespondedByDepartment))
			} else {
				row = append(row, notAvailable, notAvailable, notAvailable, notAvailable, notAvailable)
			}
			t.Rows = append(t.Rows, row)
		}
		if sub.Suggestions != nil && *sub.Suggestions != "" {
			t.Rows = append(t.Rows, []any{
				sub.ID, surveyTitle(sub), deptName(sub.RatedDepartment), submitterField(sub, false),
				deptName(sub.SubmitterDepartment), submissionDate(sub), "Overall Suggestion",
				"Additional Suggestions or Feedback", notAvailable, *sub.Suggestions,
				notAvailable, notAvailable, notAvailable, notAvailable, notAvailable,
			})
		}
	}
	return t
}

func renderXLSX(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(t.Sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Sheet, "A1", &header); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(t.Header), 1)
	if err := f.SetCellStyle(t.Sheet, "A1", last, headerStyle); err != nil {
		return nil, err
	}

	for i, row := range t.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		r := row
		if err := f.SetSheetRow(t.Sheet, cell, &r); err != nil {
			return nil, err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(t.Header))
	if err := f.SetColWidth(t.Sheet, "A", lastCol, 20); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// fit shortens s with an ellipsis until it fits width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func renderPDF(t *Table, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	colWidth := (pageWidth - 20) / float64(len(t.Header))

	writeHeader := func() {
		pdf.SetFont("Arial", "B", 6)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range t.Header {
			pdf.CellFormat(colWidth, 7, fit(pdf, tr(h), colWidth-1), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 6)
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(utils.TitleCase(t.Sheet)), "", 1, "L", false, 0, "")
		writeHeader()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 7)
		pdf.CellFormat(0, 6, fmt.Sprintf("Generated on: %s    Page: %d", now.Format("2006-01-02 15:04:05"), pdf.PageNo()), "", 0, "L", false, 0, "")
	})

	pdf.AddPage()
	for _, row := range t.Rows {
		for _, v := range row {
			pdf.CellFormat(colWidth, 6, fit(pdf, tr(cellText(v)), colWidth-1), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
