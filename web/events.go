package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pharmaevents/event"
	"pharmaevents/importer"
	"pharmaevents/internal/htmlsanitize"
	"pharmaevents/internal/timeutil"
	"pharmaevents/output"
	"pharmaevents/storage"
	"pharmaevents/user"
)

type eventsPageView struct {
	layoutView
	Events     []event.Event
	Categories []event.Category
	Types      []event.Type
}

type eventDetailsView struct {
	layoutView
	Event    event.Event
	ImageURL string
	CanEdit  bool
}

type eventFormView struct {
	layoutView
	EditMode     bool
	Event        event.Event
	Categories   []event.Category
	Types        []event.Type
	Governorates []string
}

// eventForm holds the raw create/edit form values.
type eventForm struct {
	Title                string   `validate:"required"`
	Description          string   `validate:"required"`
	StartDate            string   `validate:"required,datetime=2006-01-02"`
	StartTime            string   `validate:"omitempty"`
	EndDate              string   `validate:"omitempty,datetime=2006-01-02"`
	EndTime              string   `validate:"omitempty"`
	RegistrationDeadline string   `validate:"omitempty,datetime=2006-01-02"`
	EventType            string   `validate:"omitempty,number"`
	Categories           []string `validate:"dive,number"`
	IsOnline             bool
	Venue                string
	Governorate          string
}

var eventFieldMessages = map[string]string{
	"Title.required":       "Event title is required",
	"Description.required": "Event description is required",
	"StartDate.required":   "Start date is required",
	"StartDate.datetime":   "Start date must be a valid date",
	"EndDate.datetime":     "End date must be a valid date",
}

func readEventForm(r *http.Request) eventForm {
	form := eventForm{
		Title:                strings.TrimSpace(r.FormValue("title")),
		Description:          htmlsanitize.Description(r.FormValue("description")),
		StartDate:            strings.TrimSpace(r.FormValue("start_date")),
		StartTime:            strings.TrimSpace(r.FormValue("start_time")),
		EndDate:              strings.TrimSpace(r.FormValue("end_date")),
		EndTime:              strings.TrimSpace(r.FormValue("end_time")),
		RegistrationDeadline: strings.TrimSpace(r.FormValue("registration_deadline")),
		EventType:            strings.TrimSpace(r.FormValue("event_type")),
		IsOnline:             r.Form.Has("is_online"),
		Venue:                strings.TrimSpace(r.FormValue("venue")),
		Governorate:          strings.TrimSpace(r.FormValue("governorate")),
	}
	for _, value := range r.Form["categories"] {
		if value = strings.TrimSpace(value); value != "" {
			form.Categories = append(form.Categories, value)
		}
	}
	return form
}

// validationMessage turns the first failed rule into a user-facing message.
func validationMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Invalid event details"
	}
	first := validationErrs[0]
	if message, ok := eventFieldMessages[first.StructField()+"."+first.Tag()]; ok {
		return message
	}
	return fmt.Sprintf("Invalid value for %s", first.StructField())
}

func (f eventForm) categoryIDs() ([]int64, error) {
	ids := make([]int64, 0, len(f.Categories))
	for _, raw := range f.Categories {
		id, err := parsePositiveInt64(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid category %q", raw)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (f eventForm) governorate() (string, error) {
	if f.Governorate == "" {
		return "", nil
	}
	name, ok := event.CanonicalGovernorate(f.Governorate)
	if !ok {
		return "", errors.New("Please select a valid governorate")
	}
	return name, nil
}

// schedule parses the date inputs. Only dates that were submitted are set.
func (f eventForm) schedule(e *event.Event, loc *time.Location) error {
	if f.StartDate != "" {
		start, err := timeutil.ParseFormDateTime(f.StartDate, f.StartTime, loc)
		if err != nil {
			return errors.New("Start date must be a valid date")
		}
		e.StartDateTime = start
	}
	if f.EndDate != "" {
		end, err := timeutil.ParseFormDateTime(f.EndDate, f.EndTime, loc)
		if err != nil {
			return errors.New("End date must be a valid date")
		}
		e.EndDateTime = end
	}
	if f.RegistrationDeadline != "" {
		deadline, err := timeutil.ParseFormDateTime(f.RegistrationDeadline, "", loc)
		if err != nil {
			return errors.New("Registration deadline must be a valid date")
		}
		e.RegistrationDeadline = deadline
	}
	if e.HasEnd() && e.EndDateTime.Before(e.StartDateTime) {
		return errors.New("End date must be after the start date")
	}
	return nil
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := eventsPageView{layoutView: s.layout(w, r, "Events")}

	var err error
	if view.Events, err = s.store.ListEvents(ctx); err != nil {
		s.logger.Error("list events", zap.Error(err))
	}
	if view.Categories, err = s.store.ListCategories(ctx); err != nil {
		s.logger.Error("list categories", zap.Error(err))
	}
	if view.Types, err = s.store.ListEventTypes(ctx); err != nil {
		s.logger.Error("list event types", zap.Error(err))
	}
	s.render(w, "events.html", view)
}

// loadEvent resolves the {id} path parameter; on failure it flashes and
// redirects to the event list.
func (s *Server) loadEvent(w http.ResponseWriter, r *http.Request) (event.Event, bool) {
	id, err := pathID(r)
	if err == nil {
		var e event.Event
		if e, err = s.store.GetEvent(r.Context(), id); err == nil {
			return e, true
		}
	}
	if !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("load event", zap.String("path", r.URL.Path), zap.Error(err))
	}
	s.redirectWithFlash(w, r, "/events", flashDanger, "Event not found or error loading details.")
	return event.Event{}, false
}

func canEdit(account user.User, e event.Event) bool {
	return account.IsAdmin() || e.UserID == account.ID
}

func (s *Server) handleEventDetails(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadEvent(w, r)
	if !ok {
		return
	}
	account, _ := currentUser(r)
	s.render(w, "event_details.html", eventDetailsView{
		layoutView: s.layout(w, r, e.Name),
		Event:      e,
		ImageURL:   uploadURL(e.ImageFile),
		CanEdit:    canEdit(account, e),
	})
}

func (s *Server) eventFormView(w http.ResponseWriter, r *http.Request, title string, editMode bool, e event.Event, messages ...flash) eventFormView {
	ctx := r.Context()
	view := eventFormView{
		layoutView:   s.layout(w, r, title),
		EditMode:     editMode,
		Event:        e,
		Governorates: event.Governorates(),
	}
	view.Flashes = append(view.Flashes, messages...)

	var err error
	if view.Categories, err = s.store.ListCategories(ctx); err != nil {
		s.logger.Error("list categories", zap.Error(err))
	}
	if view.Types, err = s.store.ListEventTypes(ctx); err != nil {
		s.logger.Error("list event types", zap.Error(err))
	}
	return view
}

func (s *Server) handleCreateEventPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "event_form.html", s.eventFormView(w, r, "Create Event", false, event.Event{}))
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	account, _ := currentUser(r)
	if err := s.parseMultipart(w, r); err != nil {
		s.logger.Warn("create event form", zap.Error(err))
		s.redirectWithFlash(w, r, "/create_event", flashDanger, "Error creating event. Please try again.")
		return
	}
	form := readEventForm(r)
	draft := form.draft(s.location)

	fail := func(category, message string) {
		view := s.eventFormView(w, r, "Create Event", false, draft, flash{Category: category, Message: message})
		s.renderStatus(w, http.StatusUnprocessableEntity, "event_form.html", view)
	}

	attendeesFile, attendeesHeader, err := formFile(r, "attendees_file")
	if errors.Is(err, errNoFile) {
		fail(flashDanger, "Attendees list file is required. Please upload a CSV or Excel file with attendee details.")
		return
	}
	if err != nil {
		s.logger.Warn("read attendees upload", zap.Error(err))
		fail(flashDanger, "Error processing attendees file. Please check the format and try again.")
		return
	}
	defer attendeesFile.Close()
	if !attendeesUpload.accepts(attendeesHeader.Filename) {
		fail(flashDanger, "Attendees file must be CSV or Excel format")
		return
	}

	attendeesRel, err := s.saveUpload(attendeesFile, attendeesHeader, attendeesUpload)
	if err != nil {
		s.logger.Error("save attendees upload", zap.Error(err))
		fail(flashDanger, "Error processing attendees file. Please check the format and try again.")
		return
	}
	summary, err := importer.CountAttendees(s.uploadPath(attendeesRel), "")
	if err != nil {
		s.removeUpload(attendeesRel)
		if errors.Is(err, importer.ErrEmptyFile) {
			fail(flashDanger, "Attendees file appears to be empty")
			return
		}
		s.logger.Warn("process attendees file", zap.String("file", attendeesHeader.Filename), zap.Error(err))
		fail(flashDanger, "Error processing attendees file. Please check the format and try again.")
		return
	}
	s.logger.Info("attendees file processed",
		zap.String("file", attendeesRel),
		zap.Int("rows", summary.Rows),
		zap.Int("attendees", summary.Count),
		zap.String("name_column", summary.NameColumn),
	)

	e, categoryIDs, err := s.buildEvent(form)
	if err != nil {
		s.removeUpload(attendeesRel)
		fail(flashDanger, err.Error())
		return
	}
	e.AttendeesFile = attendeesRel
	e.AttendeesCount = summary.Count
	e.UserID = account.ID
	e.Status = event.StatusPending
	if account.IsAdmin() {
		e.Status = event.StatusApproved
	}

	if imageFile, imageHeader, err := formFile(r, "event_image"); err == nil {
		defer imageFile.Close()
		if eventImageUpload.accepts(imageHeader.Filename) {
			if e.ImageFile, err = s.saveUpload(imageFile, imageHeader, eventImageUpload); err != nil {
				s.logger.Error("save event image", zap.Error(err))
			}
		} else {
			s.addFlash(w, r, flashWarning, "Invalid image format. Please upload PNG, JPG, JPEG, or GIF files.")
		}
	}

	id, err := s.store.CreateEvent(r.Context(), e, categoryIDs)
	if err != nil {
		s.logger.Error("create event", zap.Error(err))
		s.removeUpload(attendeesRel)
		s.removeUpload(e.ImageFile)
		fail(flashDanger, "Error creating event. Please try again.")
		return
	}

	s.logger.Info("event created",
		zap.Int64("event_id", id),
		zap.Int64("user_id", account.ID),
		zap.String("status", string(e.Status)),
	)
	message := fmt.Sprintf("Event %q created successfully!", e.Name)
	if summary.Count > 0 {
		message += fmt.Sprintf(" Attendees file uploaded with %d participants.", summary.Count)
	}
	s.redirectWithFlash(w, r, "/events", flashSuccess, message)
}

// draft echoes the submitted values back into the form after a failure.
func (f eventForm) draft(loc *time.Location) event.Event {
	e := event.Event{
		Name:        f.Title,
		Description: f.Description,
		IsOnline:    f.IsOnline,
		Venue:       f.Venue,
		Governorate: f.Governorate,
	}
	_ = f.schedule(&e, loc)
	if id, err := parsePositiveInt64(f.EventType); err == nil {
		e.EventTypeID = id
	}
	if ids, err := f.categoryIDs(); err == nil {
		for _, id := range ids {
			e.Categories = append(e.Categories, event.Category{ID: id})
		}
	}
	return e
}

// buildEvent validates a create form and converts it into an event.
func (s *Server) buildEvent(form eventForm) (event.Event, []int64, error) {
	if err := s.validate.Struct(form); err != nil {
		return event.Event{}, nil, errors.New(validationMessage(err))
	}

	e := event.Event{
		Name:        form.Title,
		Description: form.Description,
		IsOnline:    form.IsOnline,
	}
	if err := form.schedule(&e, s.location); err != nil {
		return event.Event{}, nil, err
	}
	if form.EventType != "" {
		id, err := parsePositiveInt64(form.EventType)
		if err != nil {
			return event.Event{}, nil, errors.New("Invalid event type")
		}
		e.EventTypeID = id
	}
	if !form.IsOnline {
		governorate, err := form.governorate()
		if err != nil {
			return event.Event{}, nil, err
		}
		e.Governorate = governorate
		e.Venue = form.Venue
	}

	categoryIDs, err := form.categoryIDs()
	if err != nil {
		return event.Event{}, nil, err
	}
	return e, categoryIDs, nil
}

func (s *Server) handleEditEventPage(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadEvent(w, r)
	if !ok {
		return
	}
	account, _ := currentUser(r)
	if !canEdit(account, e) {
		s.redirectWithFlash(w, r, "/events", flashDanger, "You do not have permission to edit this event.")
		return
	}
	s.render(w, "event_form.html", s.eventFormView(w, r, "Edit Event", true, e))
}

// handleEditEvent applies a partial update: empty fields keep their stored
// value, the online flag is always taken from the form and categories are
// replaced only when some are submitted.
func (s *Server) handleEditEvent(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadEvent(w, r)
	if !ok {
		return
	}
	account, _ := currentUser(r)
	if !canEdit(account, e) {
		s.redirectWithFlash(w, r, "/events", flashDanger, "You do not have permission to edit this event.")
		return
	}
	editURL := fmt.Sprintf("/edit_event/%d", e.ID)
	if err := s.parseMultipart(w, r); err != nil {
		s.logger.Warn("edit event form", zap.Error(err))
		s.redirectWithFlash(w, r, editURL, flashDanger, "Error updating event. Please try again.")
		return
	}
	form := readEventForm(r)

	if form.Title != "" {
		e.Name = form.Title
	}
	if form.Description != "" {
		e.Description = form.Description
	}
	if form.EventType != "" {
		id, err := parsePositiveInt64(form.EventType)
		if err != nil {
			s.redirectWithFlash(w, r, editURL, flashDanger, "Invalid event type")
			return
		}
		e.EventTypeID = id
	}
	e.IsOnline = form.IsOnline
	if form.Governorate != "" {
		governorate, err := form.governorate()
		if err != nil {
			s.redirectWithFlash(w, r, editURL, flashDanger, err.Error())
			return
		}
		e.Governorate = governorate
	}
	if form.Venue != "" {
		e.Venue = form.Venue
	}
	if err := form.schedule(&e, s.location); err != nil {
		s.redirectWithFlash(w, r, editURL, flashDanger, err.Error())
		return
	}

	var categoryIDs []int64
	if len(form.Categories) > 0 {
		ids, err := form.categoryIDs()
		if err != nil {
			s.redirectWithFlash(w, r, editURL, flashDanger, err.Error())
			return
		}
		categoryIDs = ids
	}

	previousImage := e.ImageFile
	if imageFile, imageHeader, err := formFile(r, "event_image"); err == nil {
		defer imageFile.Close()
		if eventImageUpload.accepts(imageHeader.Filename) {
			if e.ImageFile, err = s.saveUpload(imageFile, imageHeader, eventImageUpload); err != nil {
				s.logger.Error("save event image", zap.Error(err))
				e.ImageFile = previousImage
			}
		} else {
			s.addFlash(w, r, flashWarning, "Invalid image format. Please upload PNG, JPG, JPEG, or GIF files.")
		}
	}

	if err := s.store.UpdateEvent(r.Context(), e, categoryIDs); err != nil {
		s.logger.Error("update event", zap.Int64("event_id", e.ID), zap.Error(err))
		if e.ImageFile != previousImage {
			s.removeUpload(e.ImageFile)
		}
		s.redirectWithFlash(w, r, editURL, flashDanger, "Error updating event. Please try again.")
		return
	}
	if e.ImageFile != previousImage {
		s.removeUpload(previousImage)
	}

	s.logger.Info("event updated", zap.Int64("event_id", e.ID), zap.Int64("user_id", account.ID))
	s.redirectWithFlash(w, r, "/events", flashSuccess, fmt.Sprintf("Event %q updated successfully!", e.Name))
}

func (s *Server) handleApproveEvent(w http.ResponseWriter, r *http.Request) {
	s.setEventStatus(w, r, event.StatusApproved, "approved")
}

func (s *Server) handleRejectEvent(w http.ResponseWriter, r *http.Request) {
	s.setEventStatus(w, r, event.StatusRejected, "rejected")
}

func (s *Server) setEventStatus(w http.ResponseWriter, r *http.Request, status event.Status, verb string) {
	e, ok := s.loadEvent(w, r)
	if !ok {
		return
	}
	if err := s.store.SetEventStatus(r.Context(), e.ID, status); err != nil {
		s.logger.Error("set event status", zap.Int64("event_id", e.ID), zap.String("status", string(status)), zap.Error(err))
		s.redirectWithFlash(w, r, "/events", flashDanger, "Error updating event. Please try again.")
		return
	}
	s.logger.Info("event status changed", zap.Int64("event_id", e.ID), zap.String("status", string(status)))
	s.redirectWithFlash(w, r, "/events", flashSuccess, fmt.Sprintf("Event %q has been %s.", e.Name, verb))
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadEvent(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteEvent(r.Context(), e.ID); err != nil {
		s.logger.Error("delete event", zap.Int64("event_id", e.ID), zap.Error(err))
		s.redirectWithFlash(w, r, "/events", flashDanger, "Error deleting event. Please try again.")
		return
	}
	s.removeUpload(e.ImageFile)
	s.removeUpload(e.AttendeesFile)

	s.logger.Info("event deleted", zap.Int64("event_id", e.ID))
	s.redirectWithFlash(w, r, "/events", flashSuccess, fmt.Sprintf("Event %q has been deleted successfully.", e.Name))
}

// handleExportEvents streams all events as CSV (default) or Excel; mode=monthly
// exports the per-month summary instead.
func (s *Server) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	format := strings.TrimSpace(r.URL.Query().Get("format"))
	writer, err := output.WriterForFormat(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := s.store.ListEvents(r.Context())
	if err != nil {
		s.logger.Error("export events", zap.Error(err))
		s.redirectWithFlash(w, r, "/events", flashDanger, "Error exporting events. Please try again.")
		return
	}

	name := "events"
	monthly := strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("mode")), "monthly")
	if monthly {
		name = "events_monthly"
	}
	filename := fmt.Sprintf("%s_%s.%s", name, s.now().Format("20060102"), writer.Extension())
	w.Header().Set("Content-Type", writer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if monthly {
		err = output.WriteMonthlySummaries(w, format, output.BuildMonthlySummaries(events, s.location))
	} else {
		err = writer.Write(w, events)
	}
	if err != nil {
		s.logger.Error("write export", zap.String("format", format), zap.Error(err))
	}
}
