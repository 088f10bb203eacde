package handlers

import (
	"github.com/wolfman30/insurance-leadform/internal/leads"
	"github.com/wolfman30/insurance-leadform/internal/session"
)

type field struct {
	Name        string
	Label       string
	Type        string
	Value       string
	Placeholder string
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Expertise      []leads.InsuranceType
	StateCount     int
	Names          []field
	Email          field
	Phone          field
	States         []option
	InsuranceTypes []option
	ShowErrors     bool
	Warnings       []leads.FieldError
	ErrorMessage   string
	Success        bool
	Submitted      *session.Snapshot
	Countdown      session.CountdownView
}

// placeholders maps each text field to its normal and warning hints.
var placeholders = map[string][2]string{
	leads.FieldFirstName: {"John", "⚠️ Please enter your first name"},
	leads.FieldLastName:  {"Doe", "⚠️ Please enter your last name"},
	leads.FieldEmail:     {"john.doe@example.com", "⚠️ Please enter a valid email address"},
	leads.FieldPhone:     {"(555) 123-4567", "⚠️ Please enter a valid 10-digit phone number"},
}

func newPageData(catalog leads.Catalog, st session.State) pageData {
	textField := func(name, label, typ, value string) field {
		hint := placeholders[name][0]
		if st.ShowErrors {
			hint = placeholders[name][1]
		}
		return field{Name: name, Label: label, Type: typ, Value: value, Placeholder: hint}
	}

	return pageData{
		Expertise:  catalog.InsuranceTypes,
		StateCount: len(catalog.States),
		Names: []field{
			textField(leads.FieldFirstName, "First Name *", "text", st.Input.FirstName),
			textField(leads.FieldLastName, "Last Name *", "text", st.Input.LastName),
		},
		Email:          textField(leads.FieldEmail, "Email Address *", "email", st.Input.Email),
		Phone:          textField(leads.FieldPhone, "Phone Number *", "tel", st.Input.Phone),
		States:         selectOptions(catalog.StateOptions(st.ShowErrors), st.Input.State),
		InsuranceTypes: selectOptions(catalog.InsuranceTypeOptions(st.ShowErrors), st.Input.InsuranceType),
		ShowErrors:     st.ShowErrors,
		Warnings:       st.Warnings,
		ErrorMessage:   st.Message,
		Success:        st.ShowSuccess,
		Submitted:      st.Submitted,
		Countdown:      session.Countdown(st),
	}
}

// selectOptions renders the placeholder with an empty value so it can never
// be submitted as a choice.
func selectOptions(labels []string, selected string) []option {
	opts := make([]option, 0, len(labels))
	for i, label := range labels {
		value := label
		if i == 0 {
			value = ""
		}
		opts = append(opts, option{Value: value, Label: label, Selected: i > 0 && label == selected})
	}
	return opts
}
