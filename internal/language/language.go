// Package language defines the content languages served by the API.
package language

import "github.com/wichananm65/fakturera/internal/validate"

// Code is a two letter language code.
type Code string

const (
	EN Code = "en"
	SV Code = "sv"

	Default = EN
)

var allowed = []string{string(EN), string(SV)}

// Parse validates a ?lang= value; an empty value means the default language.
func Parse(raw string) (Code, error) {
	v, err := validate.OneOf("Invalid Language", "Language code", raw, string(Default), allowed, false)
	if err != nil {
		return "", err
	}
	return Code(v), nil
}

// Column returns the localized column for base, e.g. name -> name_sv.
func (c Code) Column(base string) string {
	if c != SV {
		c = EN
	}
	return base + "_" + string(c)
}

func (c Code) String() string { return string(c) }
