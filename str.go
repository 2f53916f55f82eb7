package rrule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateTimeLayout = "20060102T150405"
const dateTimeUTCLayout = "20060102T150405Z"
const dateLayout = "20060102"

var freqNames = map[Frequency]string{
	YEARLY:   "YEARLY",
	MONTHLY:  "MONTHLY",
	WEEKLY:   "WEEKLY",
	DAILY:    "DAILY",
	HOURLY:   "HOURLY",
	MINUTELY: "MINUTELY",
	SECONDLY: "SECONDLY",
}

var freqByName = map[string]Frequency{
	"YEARLY":   YEARLY,
	"MONTHLY":  MONTHLY,
	"WEEKLY":   WEEKLY,
	"DAILY":    DAILY,
	"HOURLY":   HOURLY,
	"MINUTELY": MINUTELY,
	"SECONDLY": SECONDLY,
}

var weekdayNames = [...]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

var weekdayByName = map[string]Weekday{
	"MO": MO, "TU": TU, "WE": WE, "TH": TH, "FR": FR, "SA": SA, "SU": SU,
}

var knownPropertyNames = map[string]bool{
	"DTSTART": true,
	"RRULE":   true,
	"EXRULE":  true,
	"RDATE":   true,
	"EXDATE":  true,
}

// timeToStr formats t in UTC, basic ISO-8601 form, with the trailing Z
// RFC 5545 requires for UTC date-times.
func timeToStr(t time.Time) string {
	return t.UTC().Format(dateTimeUTCLayout)
}

// parseDateTimeValue parses a single RFC 5545 DATE-TIME or DATE value.
// loc supplies the location for a floating (no-Z) date-time; a DATE
// value is always treated as UTC midnight.
func parseDateTimeValue(value string, loc *time.Location) (time.Time, error) {
	switch len(value) {
	case len(dateTimeUTCLayout):
		if !strings.HasSuffix(value, "Z") {
			return time.Time{}, newError(KindParseError, "malformed date-time %q", value)
		}
		t, err := time.ParseInLocation(dateTimeUTCLayout, value, time.UTC)
		if err != nil {
			return time.Time{}, wrapError(KindParseError, err, "malformed date-time %q", value)
		}
		return t, nil
	case len(dateTimeLayout):
		t, err := time.ParseInLocation(dateTimeLayout, value, loc)
		if err != nil {
			return time.Time{}, wrapError(KindParseError, err, "malformed date-time %q", value)
		}
		return t, nil
	case len(dateLayout):
		t, err := time.ParseInLocation(dateLayout, value, time.UTC)
		if err != nil {
			return time.Time{}, wrapError(KindParseError, err, "malformed date %q", value)
		}
		return t, nil
	default:
		return time.Time{}, newError(KindParseError, "malformed date-time %q", value)
	}
}

// strToDtStart parses the value half of a DTSTART property (the part
// after the property name and its separator), accepting an optional
// "TZID=<zone>:" prefix.
func strToDtStart(s string, defaultLoc *time.Location) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, newError(KindParseError, "empty DTSTART value")
	}
	loc := defaultLoc
	value := s
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		prefix := s[:idx]
		if !strings.HasPrefix(prefix, "TZID=") {
			return time.Time{}, newError(KindParseError, "invalid DTSTART %q", s)
		}
		zone := strings.TrimPrefix(prefix, "TZID=")
		if zone == "" {
			return time.Time{}, newError(KindParseError, "empty TZID in %q", s)
		}
		l, err := time.LoadLocation(zone)
		if err != nil {
			return time.Time{}, wrapError(KindParseError, err, "unknown TZID %q", zone)
		}
		loc = l
		value = s[idx+1:]
	}
	return parseDateTimeValue(value, loc)
}

// parseValueParams splits a parameter-prefixed property value of the
// form "[PARAM=VAL[;PARAM=VAL...]:]VALUES" and validates the
// recognized parameter names (VALUE, TZID) for an RDATE/EXDATE.
func parseValueParams(s string) (params map[string]string, value string, err error) {
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return nil, s, nil
	}
	prefix := s[:idx]
	value = s[idx+1:]
	if prefix == "" {
		return nil, "", newError(KindParseError, "malformed property value %q", s)
	}
	params = map[string]string{}
	for _, part := range strings.Split(prefix, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, "", newError(KindParseError, "malformed parameter %q", part)
		}
		key, val := strings.ToUpper(kv[0]), kv[1]
		switch key {
		case "VALUE":
			if val != "DATE-TIME" && val != "DATE" {
				return nil, "", newError(KindUnsupportedParameter, "unsupported VALUE %q", val)
			}
		case "TZID":
			if val == "" {
				return nil, "", newError(KindParseError, "empty TZID in %q", s)
			}
		default:
			return nil, "", newError(KindUnsupportedParameter, "unsupported parameter %q", key)
		}
		params[key] = val
	}
	return params, value, nil
}

// StrToDates parses a comma-separated RDATE/EXDATE value in UTC.
func StrToDates(s string) ([]time.Time, error) {
	return StrToDatesInLoc(s, time.UTC)
}

// StrToDatesInLoc parses a comma-separated RDATE/EXDATE value, using
// defaultLoc for any entry that carries no TZID of its own.
func StrToDatesInLoc(s string, defaultLoc *time.Location) ([]time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, newError(KindParseError, "empty date list")
	}
	params, value, err := parseValueParams(s)
	if err != nil {
		return nil, err
	}
	loc := defaultLoc
	if tzid, ok := params["TZID"]; ok {
		l, err := time.LoadLocation(tzid)
		if err != nil {
			return nil, wrapError(KindParseError, err, "unknown TZID %q", tzid)
		}
		loc = l
	}
	var result []time.Time
	for _, part := range strings.Split(value, ",") {
		t, err := parseDateTimeValue(part, loc)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

// processRRuleName splits a property line into its name and the
// remainder (including the leading ';' or ':' separator), validating
// that the name is one this package recognizes.
func processRRuleName(line string) (name, rest string, err error) {
	if strings.TrimSpace(line) == "" {
		return "", "", newError(KindParseError, "empty property line")
	}
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return "", "", newError(KindParseError, "missing ':' in property line %q", line)
	}
	nameEnd := colon
	if semi := strings.IndexByte(line, ';'); semi >= 0 && semi < colon {
		nameEnd = semi
	}
	name = line[:nameEnd]
	if name == "" {
		return "", "", newError(KindParseError, "missing property name in %q", line)
	}
	if !knownPropertyNames[name] && !strings.HasPrefix(name, "X-") {
		return "", "", newError(KindUnknownProperty, "unknown property %q", name)
	}
	return name, line[nameEnd:], nil
}

func parseIntList(val string) ([]int, error) {
	if val == "" {
		return nil, newError(KindParseError, "empty integer list")
	}
	var result []int
	for _, part := range strings.Split(val, ",") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, wrapError(KindParseError, err, "malformed integer %q", part)
		}
		result = append(result, n)
	}
	return result, nil
}

var weekdayTokenRe = regexp.MustCompile(`^([+-]?[0-9]+)?(MO|TU|WE|TH|FR|SA|SU)$`)

func parseWeekdayToken(tok string) (Weekday, error) {
	m := weekdayTokenRe.FindStringSubmatch(tok)
	if m == nil {
		return Weekday{}, newError(KindParseError, "malformed BYDAY value %q", tok)
	}
	base := weekdayByName[m[2]]
	if m[1] == "" {
		return base, nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Weekday{}, wrapError(KindParseError, err, "malformed BYDAY value %q", tok)
	}
	return base.Nth(n), nil
}

func parseWeekdayList(val string) ([]Weekday, error) {
	if val == "" {
		return nil, newError(KindParseError, "empty BYDAY value")
	}
	var result []Weekday
	for _, tok := range strings.Split(val, ",") {
		wd, err := parseWeekdayToken(tok)
		if err != nil {
			return nil, err
		}
		result = append(result, wd)
	}
	return result, nil
}

// parseRRuleOptions parses the flat "KEY=VAL;KEY=VAL" body of an RRULE
// or EXRULE value into an ROption, without constructing the RRule.
func parseRRuleOptions(s string) (ROption, error) {
	if strings.TrimSpace(s) == "" {
		return ROption{}, newError(KindParseError, "empty RRULE value")
	}
	var opt ROption
	freqSet := false
	for _, pair := range strings.Split(s, ";") {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return ROption{}, newError(KindParseError, "malformed key=value pair %q", pair)
		}
		key, val := strings.ToUpper(kv[0]), kv[1]
		var err error
		switch key {
		case "FREQ":
			f, ok := freqByName[strings.ToUpper(val)]
			if !ok {
				return ROption{}, newError(KindInvalidParameter, "unknown FREQ %q", val)
			}
			opt.Freq = f
			freqSet = true
		case "DTSTART":
			opt.Dtstart, err = parseDateTimeValue(val, time.UTC)
		case "INTERVAL":
			opt.Interval, err = strconv.Atoi(val)
		case "COUNT":
			opt.Count, err = strconv.Atoi(val)
		case "WKST":
			wd, ok := weekdayByName[strings.ToUpper(val)]
			if !ok {
				return ROption{}, newError(KindParseError, "malformed WKST value %q", val)
			}
			opt.Wkst = wd
		case "UNTIL":
			opt.Until, err = parseDateTimeValue(val, time.UTC)
		case "BYSETPOS":
			opt.Bysetpos, err = parseIntList(val)
		case "BYMONTH":
			opt.Bymonth, err = parseIntList(val)
		case "BYMONTHDAY":
			opt.Bymonthday, err = parseIntList(val)
		case "BYYEARDAY":
			opt.Byyearday, err = parseIntList(val)
		case "BYWEEKNO":
			opt.Byweekno, err = parseIntList(val)
		case "BYDAY":
			opt.Byweekday, err = parseWeekdayList(val)
		case "BYHOUR":
			opt.Byhour, err = parseIntList(val)
		case "BYMINUTE":
			opt.Byminute, err = parseIntList(val)
		case "BYSECOND":
			opt.Bysecond, err = parseIntList(val)
		case "BYEASTER":
			opt.Byeaster, err = parseIntList(val)
		default:
			return ROption{}, newError(KindParseError, "unknown RRULE key %q", key)
		}
		if err != nil {
			return ROption{}, err
		}
	}
	if !freqSet {
		return ROption{}, newError(KindInvalidParameter, "FREQ is required")
	}
	return opt, nil
}

// StrToRRule parses a flat "FREQ=...;..." RRULE value into a rule. The
// resulting rule serializes with its own DTSTART key (RFC is false).
func StrToRRule(s string) (*RRule, error) {
	opt, err := parseRRuleOptions(s)
	if err != nil {
		return nil, err
	}
	return NewRRule(opt)
}

// parseRuleForSet parses an RRULE/EXRULE value found inside a Set's
// text, inheriting dtstart when the value doesn't supply its own.
func parseRuleForSet(value string, dtstart time.Time) (*RRule, error) {
	opt, err := parseRRuleOptions(value)
	if err != nil {
		return nil, err
	}
	if opt.Dtstart.IsZero() {
		opt.Dtstart = dtstart
	}
	opt.RFC = true
	return NewRRule(opt)
}

func splitPropertyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// StrToRRuleSet parses a full RFC 5545 recurrence text block (DTSTART,
// RRULE, EXRULE, RDATE, EXDATE lines) into a Set, in UTC by default.
func StrToRRuleSet(s string) (*Set, error) {
	if strings.TrimSpace(s) == "" {
		return nil, newError(KindParseError, "empty input")
	}
	return parseRRuleSetLines(splitPropertyLines(s), time.UTC)
}

// StrSliceToRRuleSet parses one property per line, in UTC by default.
func StrSliceToRRuleSet(lines []string) (*Set, error) {
	return parseRRuleSetLines(lines, time.UTC)
}

// StrSliceToRRuleSetInLoc parses one property per line, using loc as
// the default location for date-times that carry no zone of their own.
func StrSliceToRRuleSetInLoc(lines []string, loc *time.Location) (*Set, error) {
	return parseRRuleSetLines(lines, loc)
}

func parseRRuleSetLines(lines []string, defaultLoc *time.Location) (*Set, error) {
	set := &Set{}
	curLoc := defaultLoc
	var dtstart time.Time

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, rest, err := processRRuleName(line)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(name, "X-") {
			continue
		}
		body := rest[1:]
		switch name {
		case "DTSTART":
			t, err := strToDtStart(body, curLoc)
			if err != nil {
				return nil, err
			}
			dtstart = t
			curLoc = t.Location()
			set.DTStart(t)
		case "RRULE":
			r, err := parseRuleForSet(body, dtstart)
			if err != nil {
				return nil, err
			}
			set.RRule(r)
		case "EXRULE":
			r, err := parseRuleForSet(body, dtstart)
			if err != nil {
				return nil, err
			}
			set.ExRule(r)
		case "RDATE":
			ts, err := StrToDatesInLoc(body, curLoc)
			if err != nil {
				return nil, err
			}
			for _, t := range ts {
				set.RDate(t)
			}
		case "EXDATE":
			ts, err := StrToDatesInLoc(body, curLoc)
			if err != nil {
				return nil, err
			}
			for _, t := range ts {
				set.ExDate(t)
			}
		}
	}
	return set, nil
}

// String serializes r back into its flat "FREQ=...;..." form. When
// r.OrigOptions.RFC is set, DTSTART is omitted, since it belongs to a
// sibling property in that context instead of the rule body.
func (r *RRule) String() string {
	o := r.OrigOptions
	var parts []string
	parts = append(parts, "FREQ="+freqNames[o.Freq])
	if !o.RFC {
		parts = append(parts, "DTSTART="+timeToStr(r.DateStart))
	}
	if r.Interval != 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", r.Interval))
	}
	if o.Wkst != (Weekday{}) {
		parts = append(parts, "WKST="+weekdayNames[o.Wkst.weekday])
	}
	if o.Count != 0 {
		parts = append(parts, fmt.Sprintf("COUNT=%d", o.Count))
	}
	if !o.Until.IsZero() {
		parts = append(parts, "UNTIL="+timeToStr(r.UntilTime))
	}
	parts = append(parts, intListParts("BYSETPOS", o.Bysetpos)...)
	parts = append(parts, intListParts("BYMONTH", o.Bymonth)...)
	parts = append(parts, intListParts("BYMONTHDAY", o.Bymonthday)...)
	parts = append(parts, intListParts("BYYEARDAY", o.Byyearday)...)
	parts = append(parts, intListParts("BYWEEKNO", o.Byweekno)...)
	if len(o.Byweekday) != 0 {
		tokens := make([]string, len(o.Byweekday))
		for i, wd := range o.Byweekday {
			if wd.n == 0 {
				tokens[i] = weekdayNames[wd.weekday]
			} else {
				tokens[i] = fmt.Sprintf("%+d%s", wd.n, weekdayNames[wd.weekday])
			}
		}
		parts = append(parts, "BYDAY="+strings.Join(tokens, ","))
	}
	parts = append(parts, intListParts("BYHOUR", o.Byhour)...)
	parts = append(parts, intListParts("BYMINUTE", o.Byminute)...)
	parts = append(parts, intListParts("BYSECOND", o.Bysecond)...)
	parts = append(parts, intListParts("BYEASTER", o.Byeaster)...)
	return strings.Join(parts, ";")
}

func intListParts(key string, values []int) []string {
	if len(values) == 0 {
		return nil
	}
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = strconv.Itoa(v)
	}
	return []string{key + "=" + strings.Join(strs, ",")}
}

// String serializes the set back into RFC 5545 property lines: an
// optional DTSTART, then its RRULEs, EXRULEs, EXDATEs and RDATEs.
func (s *Set) String() string {
	var lines []string
	if s.hasDtstart {
		if s.dtstart.Location().String() == "UTC" {
			lines = append(lines, "DTSTART:"+timeToStr(s.dtstart))
		} else {
			lines = append(lines, fmt.Sprintf("DTSTART;TZID=%s:%s", s.dtstart.Location().String(), s.dtstart.Format(dateTimeLayout)))
		}
	}
	for _, r := range s.rrule {
		lines = append(lines, "RRULE:"+r.String())
	}
	for _, r := range s.exrule {
		lines = append(lines, "EXRULE:"+r.String())
	}
	for _, d := range s.exdate {
		lines = append(lines, "EXDATE:"+timeToStr(d))
	}
	for _, d := range s.rdate {
		lines = append(lines, "RDATE:"+timeToStr(d))
	}
	return strings.Join(lines, "\n")
}
