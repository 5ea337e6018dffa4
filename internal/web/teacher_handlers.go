package web

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloudgrade-web/internal/api"
	"cloudgrade-web/internal/session"

	"github.com/go-chi/chi/v5"
)

const gradesPageSize = 25

// periodWireFormat is the timestamp layout the backend expects for query
// period updates.
const periodWireFormat = "2006-01-02T15:04:05"

// periodInputFormat is what an HTML datetime-local field submits.
const periodInputFormat = "2006-01-02T15:04"

type teacherPageData struct {
	User session.User
	Tab  string

	UploadMessage string

	StudentID   string
	Records     []api.GradeRecord
	PageRecords []api.GradeRecord
	Page        int
	TotalPages  int
	EditingID   int64
	EditMessage string

	Period        *api.QueryPeriod
	PeriodDisplay string
	PeriodMessage string
}

func (s *Server) TeacherDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, sess := apiContext(r)
	query := r.URL.Query()
	data := teacherPageData{User: sess.User, Tab: query.Get("tab"), Page: 1}
	switch data.Tab {
	case "edit", "period":
	default:
		data.Tab = "upload"
	}

	switch data.Tab {
	case "edit":
		studentID := strings.TrimSpace(query.Get("studentId"))
		if studentID == "" {
			if query.Has("studentId") {
				data.EditMessage = "Enter a student ID before searching"
			}
			break
		}
		records, err := s.API.SearchGrades(ctx, studentID)
		if err != nil {
			if s.handleUnauthorized(w, r, err) {
				return
			}
			data.EditMessage = "Search failed: " + api.ErrorMessage(err, "unknown error")
			break
		}
		data.StudentID = studentID
		data.Records = records
		if page, err := strconv.Atoi(query.Get("page")); err == nil && page > 0 {
			data.Page = page
		}
		if editID, err := strconv.ParseInt(query.Get("edit"), 10, 64); err == nil {
			data.EditingID = editID
		}
		data.PageRecords, data.TotalPages = paginateGrades(data.Records, data.Page, gradesPageSize)
	case "period":
		if err := s.fillCurrentPeriod(ctx, &data); s.handleUnauthorized(w, r, err) {
			return
		}
	}
	render(w, s.pages.teacher, data)
}

// fillCurrentPeriod loads the active query window into the page data. A
// missing window renders the same as none set, but the caller still gets the
// error so a rejected session is not masked.
func (s *Server) fillCurrentPeriod(ctx context.Context, data *teacherPageData) error {
	period, err := s.API.CurrentPeriod(ctx)
	if err != nil {
		return err
	}
	data.Period = period
	if period != nil {
		data.PeriodDisplay = formatPeriodTime(period.StartTime) + " — " + formatPeriodTime(period.EndTime)
	}
	return nil
}

func formatPeriodTime(raw string) string {
	for _, layout := range []string{time.RFC3339, periodWireFormat, periodInputFormat} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format("2006-01-02 15:04:05")
		}
	}
	return raw
}

// paginateGrades slices records client-side at the fixed page size, returning
// the visible window and the total page count. An out-of-range page yields an
// empty window.
func paginateGrades(records []api.GradeRecord, page, pageSize int) ([]api.GradeRecord, int) {
	totalPages := (len(records) + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(records) {
		return nil, totalPages
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], totalPages
}

func (s *Server) TeacherUpload(w http.ResponseWriter, r *http.Request) {
	ctx, sess := apiContext(r)
	data := teacherPageData{User: sess.User, Tab: "upload", Page: 1}

	r.Body = http.MaxBytesReader(w, r.Body, int64(s.Config.MaxUploadMB)<<20)
	file, filename, err := multipartFile(r, "file")
	if err != nil {
		data.UploadMessage = "Upload failed: could not read the file"
		render(w, s.pages.teacher, data)
		return
	}
	if file == nil {
		data.UploadMessage = "Please choose a file first"
		render(w, s.pages.teacher, data)
		return
	}
	defer file.Close()

	result, err := s.API.UploadGrades(ctx, filename, file)
	if err != nil {
		if s.handleUnauthorized(w, r, err) {
			return
		}
		data.UploadMessage = "Upload failed: " + api.ErrorMessage(err, "unknown error")
	} else {
		message := result.Message
		if message == "" {
			message = "file received"
		}
		data.UploadMessage = "Upload successful: " + message
	}
	render(w, s.pages.teacher, data)
}

// multipartFile walks the request's multipart stream until it reaches the
// named file field, so the upload body is never spooled to memory or disk on
// its way to the backend. A nil reader with a nil error means no file was
// attached.
func multipartFile(r *http.Request, field string) (io.ReadCloser, string, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, "", err
	}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return nil, "", nil
		}
		if err != nil {
			return nil, "", err
		}
		if part.FormName() == field && part.FileName() != "" {
			return part, part.FileName(), nil
		}
		part.Close()
	}
}

// TeacherUpdateGrade saves an in-place edit of score and semester. The
// displayed list is patched from the submitted values rather than re-fetched,
// so row order and untouched fields stay as they were.
func (s *Server) TeacherUpdateGrade(w http.ResponseWriter, r *http.Request) {
	ctx, sess := apiContext(r)
	gradeID, err := strconv.ParseInt(chi.URLParam(r, "gradeId"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/dashboard/teacher?tab=edit", http.StatusSeeOther)
		return
	}
	_ = r.ParseForm()
	data := teacherPageData{
		User:      sess.User,
		Tab:       "edit",
		StudentID: strings.TrimSpace(r.FormValue("studentId")),
		Page:      1,
	}
	if page, err := strconv.Atoi(r.FormValue("page")); err == nil && page > 0 {
		data.Page = page
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("score")), 64)
	semester := strings.TrimSpace(r.FormValue("semester"))
	if err != nil || semester == "" {
		data.EditMessage = "Score must be a number and semester must not be empty"
		data.EditingID = gradeID
		s.renderGradeList(w, r, ctx, &data)
		return
	}

	records, fetchErr := s.API.SearchGrades(ctx, data.StudentID)
	if fetchErr != nil {
		if s.handleUnauthorized(w, r, fetchErr) {
			return
		}
		data.EditMessage = "Search failed: " + api.ErrorMessage(fetchErr, "unknown error")
		render(w, s.pages.teacher, data)
		return
	}

	if err := s.API.UpdateGrade(ctx, gradeID, score, semester); err != nil {
		if s.handleUnauthorized(w, r, err) {
			return
		}
		data.EditMessage = "Update failed: " + api.ErrorMessage(err, "unknown error")
		data.Records = records
	} else {
		data.Records = patchGrade(records, gradeID, score, semester)
	}
	data.PageRecords, data.TotalPages = paginateGrades(data.Records, data.Page, gradesPageSize)
	render(w, s.pages.teacher, data)
}

func (s *Server) TeacherDeleteGrade(w http.ResponseWriter, r *http.Request) {
	ctx, sess := apiContext(r)
	gradeID, err := strconv.ParseInt(chi.URLParam(r, "gradeId"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/dashboard/teacher?tab=edit", http.StatusSeeOther)
		return
	}
	_ = r.ParseForm()
	data := teacherPageData{
		User:      sess.User,
		Tab:       "edit",
		StudentID: strings.TrimSpace(r.FormValue("studentId")),
		Page:      1,
	}
	if page, err := strconv.Atoi(r.FormValue("page")); err == nil && page > 0 {
		data.Page = page
	}

	records, fetchErr := s.API.SearchGrades(ctx, data.StudentID)
	if fetchErr != nil {
		if s.handleUnauthorized(w, r, fetchErr) {
			return
		}
		data.EditMessage = "Search failed: " + api.ErrorMessage(fetchErr, "unknown error")
		render(w, s.pages.teacher, data)
		return
	}

	if err := s.API.DeleteGrade(ctx, gradeID); err != nil {
		if s.handleUnauthorized(w, r, err) {
			return
		}
		data.EditMessage = "Delete failed: " + api.ErrorMessage(err, "unknown error")
		data.Records = records
	} else {
		data.Records = removeGrade(records, gradeID)
	}
	data.PageRecords, data.TotalPages = paginateGrades(data.Records, data.Page, gradesPageSize)
	render(w, s.pages.teacher, data)
}

func (s *Server) renderGradeList(w http.ResponseWriter, r *http.Request, ctx context.Context, data *teacherPageData) {
	if data.StudentID != "" {
		if records, err := s.API.SearchGrades(ctx, data.StudentID); err == nil {
			data.Records = records
			data.PageRecords, data.TotalPages = paginateGrades(records, data.Page, gradesPageSize)
		} else if s.handleUnauthorized(w, r, err) {
			return
		}
	}
	render(w, s.pages.teacher, *data)
}

// patchGrade replaces score and semester on the matching row, leaving every
// other field and the row order untouched.
func patchGrade(records []api.GradeRecord, id int64, score float64, semester string) []api.GradeRecord {
	patched := make([]api.GradeRecord, len(records))
	copy(patched, records)
	for i := range patched {
		if patched[i].ID == id {
			patched[i].Score = score
			patched[i].Semester = semester
			break
		}
	}
	return patched
}

func removeGrade(records []api.GradeRecord, id int64) []api.GradeRecord {
	remaining := make([]api.GradeRecord, 0, len(records))
	for _, record := range records {
		if record.ID != id {
			remaining = append(remaining, record)
		}
	}
	return remaining
}

type periodForm struct {
	Start string `validate:"required"`
	End   string `validate:"required"`
}

// TeacherSetPeriod validates and saves a new query window. Timestamps arrive
// in datetime-local form and are normalized to the wire format before
// submission.
func (s *Server) TeacherSetPeriod(w http.ResponseWriter, r *http.Request) {
	ctx, sess := apiContext(r)
	_ = r.ParseForm()
	data := teacherPageData{User: sess.User, Tab: "period", Page: 1}

	form := periodForm{
		Start: strings.TrimSpace(r.FormValue("startTime")),
		End:   strings.TrimSpace(r.FormValue("endTime")),
	}
	if err := s.validate.Struct(form); err != nil {
		data.PeriodMessage = "Both a start and an end time are required"
		if err := s.fillCurrentPeriod(ctx, &data); s.handleUnauthorized(w, r, err) {
			return
		}
		render(w, s.pages.teacher, data)
		return
	}
	start, startErr := time.Parse(periodInputFormat, form.Start)
	end, endErr := time.Parse(periodInputFormat, form.End)
	if startErr != nil || endErr != nil {
		data.PeriodMessage = "The submitted times could not be parsed"
		if err := s.fillCurrentPeriod(ctx, &data); s.handleUnauthorized(w, r, err) {
			return
		}
		render(w, s.pages.teacher, data)
		return
	}
	if !start.Before(end) {
		data.PeriodMessage = "The end of the window must be after its start"
		if err := s.fillCurrentPeriod(ctx, &data); s.handleUnauthorized(w, r, err) {
			return
		}
		render(w, s.pages.teacher, data)
		return
	}

	result, err := s.API.SetPeriod(ctx, start.Format(periodWireFormat), end.Format(periodWireFormat))
	switch {
	case err != nil:
		if s.handleUnauthorized(w, r, err) {
			return
		}
		data.PeriodMessage = "Saving the window failed: " + api.ErrorMessage(err, "server error")
	case !result.Success:
		message := result.Message
		if message == "" {
			message = "unknown error"
		}
		data.PeriodMessage = "Saving the window failed: " + message
	default:
		data.PeriodMessage = "Query window saved"
	}
	if err := s.fillCurrentPeriod(ctx, &data); s.handleUnauthorized(w, r, err) {
		return
	}
	render(w, s.pages.teacher, data)
}
