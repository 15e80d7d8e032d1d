package main

import (
	"encoding/json"
	"errors"
	"regexp"
)

var emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

type validator struct {
	errors map[string]string
}

func newValidator() *validator {
	return &validator{
		errors: make(map[string]string),
	}
}

func (v *validator) toError() error {
	if v == nil {
		return errors.New("")
	}
	data, err := json.Marshal(v.errors)
	if err != nil {
		return err
	}
	return errors.New(string(data))
}

func (v *validator) hasErrors() bool {
	return len(v.errors) != 0
}

func (v *validator) checkCond(cond bool, key, msg string) {
	if cond {
		return
	}
	if _, ok := v.errors[key]; !ok {
		v.errors[key] = msg
	}
}

func (v *validator) checkUsername(username string) {
	v.checkCond(username != "", "username", "must be provided")
	v.checkCond(len(username) <= 255, "username", "must be atmost 255 characters")
}

func (v *validator) checkPassword(password string) {
	v.checkCond(password != "", "password", "must be provided")
	v.checkCond(len(password) >= 8, "password", "must be atleast 8 characters long")
	v.checkCond(len(password) <= 72, "password", "must be atmost 72 characters long")
}

// Status and priority are deliberately not checked against the fixed
// enumerations: the client constrains them, the server stores what it gets.

func (v *validator) checkCropDraft(d cropDraft) {
	v.checkCond(d.Name != "", "name", "must be provided")
	v.checkCond(d.Quantity >= 0, "quantity", "must not be negative")
	v.checkCond(!d.PlantedDate.IsZero(), "plantedDate", "must be provided")
	v.checkCond(!d.ExpectedHarvestDate.IsZero(), "expectedHarvestDate", "must be provided")
	v.checkCond(d.Status != "", "status", "must be provided")
}

func (v *validator) checkInventoryDraft(d inventoryDraft) {
	v.checkCond(d.Name != "", "name", "must be provided")
	v.checkCond(d.Category != "", "category", "must be provided")
	v.checkCond(d.Quantity >= 0, "quantity", "must not be negative")
	v.checkCond(d.Unit != "", "unit", "must be provided")
}

func (v *validator) checkTaskDraft(d taskDraft) {
	v.checkCond(d.Title != "", "title", "must be provided")
	v.checkCond(!d.DueDate.IsZero(), "dueDate", "must be provided")
	v.checkCond(d.Priority != "", "priority", "must be provided")
}
