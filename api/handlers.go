package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	healthCheck := struct {
		Status      string `json:"status"`
		Environment string `json:"environment"`
		Version     string `json:"version"`
	}{
		Status:      "available",
		Environment: app.config.Env,
		Version:     version,
	}
	writeJSON(w, http.StatusOK, healthCheck)
}

func (app *application) registerHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	v := newValidator()
	v.checkUsername(input.Username)
	v.checkPassword(input.Password)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	existing, err := app.storage.getUserByUsername(input.Username)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	if existing != nil {
		writeError(w, errors.New("username already exists"), http.StatusConflict)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	u, err := app.storage.createUser(input.Username, hash)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	// Usernames are free text; only the ones that are email addresses can
	// get a welcome mail.
	if app.mailer != nil && emailRegexp.MatchString(u.Username) {
		go func(u user) {
			if err := app.mailer.send(u.Username, welcomeTemplate, u); err != nil {
				log.Println(err)
			}
		}(*u)
	}
	writeJSON(w, http.StatusCreated, u)
}

func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	v := newValidator()
	v.checkCond(input.Username != "", "username", "must be provided")
	v.checkCond(input.Password != "", "password", "must be provided")
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	u, err := app.storage.getUserByUsername(input.Username)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	if u == nil {
		writeError(w, errors.New("invalid credentials"), http.StatusUnauthorized)
		return
	}
	err = bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(input.Password))
	if err != nil {
		writeError(w, errors.New("invalid credentials"), http.StatusUnauthorized)
		return
	}
	token, err := app.createToken(u)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (app *application) createToken(u *user) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    u.ID,
		"expires_at": time.Now().Add(24 * time.Hour).UTC().Format(time.RFC822),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(app.config.JWTSecret))
}

func (app *application) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, getUserFromRequest(r))
}

func (app *application) listCropsHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	crops, err := app.storage.cropsByUser(u.ID)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, crops)
}

func (app *application) createCropHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	var draft cropDraft
	err := json.NewDecoder(r.Body).Decode(&draft)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	v := newValidator()
	v.checkCropDraft(draft)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	c, err := app.storage.createCrop(u.ID, draft)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (app *application) listInventoryHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	items, err := app.storage.inventoryByUser(u.ID)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (app *application) createInventoryItemHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	var draft inventoryDraft
	err := json.NewDecoder(r.Body).Decode(&draft)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	v := newValidator()
	v.checkInventoryDraft(draft)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	item, err := app.storage.createInventoryItem(u.ID, draft)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (app *application) listTasksHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	tasks, err := app.storage.tasksByUser(u.ID)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (app *application) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	var draft taskDraft
	err := json.NewDecoder(r.Body).Decode(&draft)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	v := newValidator()
	v.checkTaskDraft(draft)
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return
	}
	t, err := app.storage.createTask(u.ID, draft)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (app *application) completeTaskHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	taskID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	t, err := app.storage.completeTask(u.ID, taskID)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	if t == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// weatherHandler serves fixed conditions for the dashboard. There is no real
// weather integration.
func (app *application) weatherHandler(w http.ResponseWriter, r *http.Request) {
	weather := struct {
		Temperature string `json:"temperature"`
		Humidity    string `json:"humidity"`
		WindSpeed   string `json:"windSpeed"`
		Condition   string `json:"condition"`
	}{
		Temperature: "24°C",
		Humidity:    "65%",
		WindSpeed:   "12 km/h",
		Condition:   "Sunny",
	}
	writeJSON(w, http.StatusOK, weather)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func composeJSONError(err error) string {
	jsonError := map[string]string{
		"error": err.Error(),
	}
	result, err := json.Marshal(jsonError)
	if err != nil {
		log.Println(err)
		return ""
	}
	return string(result)
}

func writeError(w http.ResponseWriter, err error, statusCode int) {
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	fmt.Fprintln(w, composeJSONError(err))
}
