package extract

import (
	"fmt"
	"strings"

	"github.com/beacon-tools/beacon/internal/generator/filter"
)

// propertyOptions is the parsed form of a candidate's beacon:property
// directive or beacon struct tag.
type propertyOptions struct {
	Name               string
	AlsoNotify         []string
	AlsoNotifyCommands []string
	Broadcast          bool
	Validated          bool
}

// typeOptions is the parsed form of a type-level beacon:observable directive.
type typeOptions struct {
	Broadcast bool
	Validated bool
}

// forwardSpec is one parsed beacon:forward directive.
type forwardSpec struct {
	Target  string
	Payload string
}

// parsePropertyDirective parses the arguments of a beacon:property line.
// Keys are space separated; list values use commas.
//
//	//beacon:property name=FullName alsoNotify=Initials,DisplayName broadcast
func parsePropertyDirective(line string) (propertyOptions, error) {
	var opts propertyOptions
	arg := strings.TrimPrefix(strings.TrimSpace(line), filter.DirectiveProperty)
	for _, tok := range strings.Fields(arg) {
		key, val, hasVal := strings.Cut(tok, "=")
		if err := applyOption(&opts, key, val, hasVal, ","); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// parsePropertyTag parses a beacon struct tag value. Options are comma
// separated, so list values use | instead.
//
//	beacon:"name=FullName,alsoNotify=Initials|DisplayName,broadcast"
func parsePropertyTag(tag string) (propertyOptions, error) {
	var opts propertyOptions
	for _, tok := range strings.Split(tag, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || tok == "notify" {
			// "notify" is the minimal marker form of the tag.
			continue
		}
		key, val, hasVal := strings.Cut(tok, "=")
		if err := applyOption(&opts, key, val, hasVal, "|"); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func applyOption(opts *propertyOptions, key, val string, hasVal bool, listSep string) error {
	switch key {
	case "name":
		if !hasVal || val == "" {
			return fmt.Errorf("option name requires a value")
		}
		opts.Name = val
	case "alsoNotify":
		if !hasVal || val == "" {
			return fmt.Errorf("option alsoNotify requires a value")
		}
		opts.AlsoNotify = append(opts.AlsoNotify, splitList(val, listSep)...)
	case "alsoNotifyCommand":
		if !hasVal || val == "" {
			return fmt.Errorf("option alsoNotifyCommand requires a value")
		}
		opts.AlsoNotifyCommands = append(opts.AlsoNotifyCommands, splitList(val, listSep)...)
	case "broadcast":
		if hasVal {
			return fmt.Errorf("option broadcast takes no value")
		}
		opts.Broadcast = true
	case "validated":
		if hasVal {
			return fmt.Errorf("option validated takes no value")
		}
		opts.Validated = true
	default:
		return fmt.Errorf("unknown option %q", key)
	}
	return nil
}

func splitList(val, sep string) []string {
	parts := strings.Split(val, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseTypeDirectives folds all type-level beacon:observable lines into one
// option set. Unknown arguments are reported so the extractor can diagnose
// them with a location.
func parseTypeDirectives(lines []string) (typeOptions, error) {
	var opts typeOptions
	for _, line := range lines {
		arg := strings.TrimPrefix(strings.TrimSpace(line), filter.DirectiveObservable)
		for _, tok := range strings.Fields(arg) {
			switch tok {
			case "broadcast":
				opts.Broadcast = true
			case "validated":
				opts.Validated = true
			default:
				return opts, fmt.Errorf("unknown option %q", tok)
			}
		}
	}
	return opts, nil
}

// parseForwardDirective parses a beacon:forward line into its target and
// payload. The payload is everything after the target token, verbatim.
//
//	//beacon:forward getter json:"full_name"
func parseForwardDirective(line string) (forwardSpec, bool) {
	arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), filter.DirectiveForward))
	target, payload, _ := strings.Cut(arg, " ")
	return forwardSpec{Target: target, Payload: strings.TrimSpace(payload)}, target != ""
}
