package backend

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/campusmaps/studyspot/core"
	"github.com/campusmaps/studyspot/core/logger"
	"github.com/campusmaps/studyspot/core/store"
)

// resource binds one store collection to its five REST operations.
type resource[R, C, U, F any] struct {
	backend     *Backend
	name        string
	plural      string
	collection  store.Collection[R, C, U, F]
	parseFilter func(url.Values) (F, error)
}

// addResourceRoutes registers the uniform routes of one resource:
//
//	POST   /<plural>
//	GET    /<plural>
//	GET    /<plural>/{<name>_id}
//	PATCH  /<plural>/{<name>_id}
//	DELETE /<plural>/{<name>_id}
func addResourceRoutes[R, C, U, F any](b *Backend, router *mux.Router, name string,
	collection store.Collection[R, C, U, F], parseFilter func(url.Values) (F, error)) {

	rc := &resource[R, C, U, F]{
		backend:     b,
		name:        name,
		plural:      core.Plural(name),
		collection:  collection,
		parseFilter: parseFilter,
	}

	listRoute := "/" + rc.plural
	itemRoute := listRoute + "/{" + name + "_id}"
	logger.Default().Debugln("create routes:", listRoute)

	router.Handle(listRoute, handlers.CompressHandler(http.HandlerFunc(rc.create))).
		Methods(http.MethodOptions, http.MethodPost)
	router.Handle(listRoute, handlers.CompressHandler(http.HandlerFunc(rc.list))).
		Methods(http.MethodOptions, http.MethodGet)
	router.Handle(itemRoute, handlers.CompressHandler(http.HandlerFunc(rc.read))).
		Methods(http.MethodOptions, http.MethodGet)
	router.Handle(itemRoute, handlers.CompressHandler(http.HandlerFunc(rc.update))).
		Methods(http.MethodOptions, http.MethodPatch)
	router.Handle(itemRoute, handlers.CompressHandler(http.HandlerFunc(rc.delete))).
		Methods(http.MethodOptions, http.MethodDelete)
}

// requestLogger returns the request's logger tagged with the storage
// operation the route performs.
func (rc *resource[R, C, U, F]) requestLogger(r *http.Request, op core.Operation) *logrus.Entry {
	rlog := logger.FromContext(r.Context()).WithField("operation", op)
	rlog.Debugln("called route for", r.URL, r.Method)
	return rlog
}

// itemID extracts and validates the path identifier.
func (rc *resource[R, C, U, F]) itemID(r *http.Request) (uuid.UUID, error) {
	param := mux.Vars(r)[rc.name+"_id"]
	id, err := uuid.Parse(param)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("path parameter '%s' is not a valid id", param)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, object interface{}) {
	jsonData, err := json.MarshalWithOption(object, json.DisableHTMLEscape())
	if err != nil {
		logger.Default().WithError(err).Errorln("cannot marshal response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(jsonData)
}

func (rc *resource[R, C, U, F]) create(w http.ResponseWriter, r *http.Request) {
	rlog := rc.requestLogger(r, core.OperationCreate)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "cannot read request body", http.StatusBadRequest)
		return
	}
	if rc.backend.validator.HasSchema(rc.name) {
		if err := rc.backend.validator.ValidateBytes(body, rc.name); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var payload C
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	object, err := rc.collection.Insert(r.Context(), payload)
	if errors.Is(err, store.ErrDuplicate) {
		http.Error(w, "id already exists", http.StatusBadRequest)
		return
	}
	if err != nil {
		rlog.WithError(err).Errorf("cannot create %s", rc.name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, object)
}

func (rc *resource[R, C, U, F]) read(w http.ResponseWriter, r *http.Request) {
	rlog := rc.requestLogger(r, core.OperationRead)

	id, err := rc.itemID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	object, err := rc.collection.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, rc.name+" not found", http.StatusNotFound)
		return
	}
	if err != nil {
		rlog.WithError(err).Errorf("cannot read %s", rc.name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	jsonData, _ := json.MarshalWithOption(object, json.DisableHTMLEscape())
	etag := bytesToEtag(jsonData)
	w.Header().Set("Etag", etag)
	if ifNoneMatchFound(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(jsonData)
}

func (rc *resource[R, C, U, F]) list(w http.ResponseWriter, r *http.Request) {
	rlog := rc.requestLogger(r, core.OperationList)

	query := r.URL.Query()
	page, err := splitPagination(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	filter, err := rc.parseFilter(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	objects, totalCount, err := rc.collection.List(r.Context(), filter, page)
	if err != nil {
		rlog.WithError(err).Errorf("cannot list %s", rc.plural)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	jsonData, _ := json.MarshalWithOption(objects, json.DisableHTMLEscape())
	pageCount := ((totalCount - 1) / page.Size) + 1

	w.Header().Set("Pagination-Limit", strconv.Itoa(page.Size))
	w.Header().Set("Pagination-Total-Count", strconv.Itoa(totalCount))
	w.Header().Set("Pagination-Page-Count", strconv.Itoa(pageCount))
	w.Header().Set("Pagination-Current-Page", strconv.Itoa(page.Number))
	w.Header().Set("Link", paginationLinks(r.URL, page, pageCount))

	etag := bytesPlusTotalCountToEtag(jsonData, totalCount)
	w.Header().Set("Etag", etag)
	if ifNoneMatchFound(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(jsonData)
}

func (rc *resource[R, C, U, F]) update(w http.ResponseWriter, r *http.Request) {
	rlog := rc.requestLogger(r, core.OperationUpdate)

	id, err := rc.itemID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "cannot read request body", http.StatusBadRequest)
		return
	}

	var payload U
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	object, err := rc.collection.Update(r.Context(), id, payload)
	if errors.Is(err, store.ErrNoFields) {
		http.Error(w, "no fields supplied", http.StatusBadRequest)
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, rc.name+" not found", http.StatusNotFound)
		return
	}
	if err != nil {
		rlog.WithError(err).Errorf("cannot update %s", rc.name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, object)
}

func (rc *resource[R, C, U, F]) delete(w http.ResponseWriter, r *http.Request) {
	rlog := rc.requestLogger(r, core.OperationDelete)

	id, err := rc.itemID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	object, err := rc.collection.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, rc.name+" not found", http.StatusNotFound)
		return
	}
	if err != nil {
		rlog.WithError(err).Errorf("cannot delete %s", rc.name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, object)
}

// paginationLinks renders the Link header of a list response with
// first/prev/next/last relations over the same path and filters.
func paginationLinks(u *url.URL, page store.Page, pageCount int) string {
	link := func(number int, rel string) string {
		values := u.Query()
		values.Set("page", strconv.Itoa(number))
		values.Set("page_size", strconv.Itoa(page.Size))
		return fmt.Sprintf("<%s?%s>; rel=\"%s\"", u.Path, values.Encode(), rel)
	}
	links := []string{link(1, "first")}
	if page.Number > 1 {
		links = append(links, link(page.Number-1, "prev"))
	}
	if page.Number < pageCount {
		links = append(links, link(page.Number+1, "next"))
	}
	links = append(links, link(pageCount, "last"))
	return strings.Join(links, ", ")
}
