// query.go — проверка параметров запроса GET /summaries.
package validation

import (
	"net/url"
	"strings"
	"time"

	"github.com/dackow/meeting-summary/internal/domain/model"
)

// Форматы ISO 8601 с зоной: расширенное (+03:00) и базовое (+0300) смещение, Z.
// Разделителем даты и времени может быть T или пробел.
var zonedLayouts = withSpaceSeparator(
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z0700",
)

// Форматы даты-времени без зоны, интерпретируемые в настроенном часовом поясе.
var localLayouts = append([]string{"2006-01-02"}, withSpaceSeparator(
	"2006-01-02T15:04",
	"2006-01-02T15:04:05.999999999",
)...)

// withSpaceSeparator дополняет каждый формат вариантом с пробелом вместо T.
func withSpaceSeparator(layouts ...string) []string {
	out := make([]string, 0, 2*len(layouts))
	for _, l := range layouts {
		out = append(out, l, strings.Replace(l, "T", " ", 1))
	}
	return out
}

// ValidateListQuery проверяет sort_by, sort_order, from_dt и to_dt.
// Пустое значение параметра равносильно его отсутствию.
func ValidateListQuery(q url.Values, loc *time.Location) (model.ListParams, error) {
	errs := FieldErrors{}
	params := model.ListParams{
		SortBy:    model.SortByCreatedAt,
		SortOrder: model.SortDesc,
	}

	switch v := q.Get("sort_by"); v {
	case "":
	case string(model.SortByCreatedAt), string(model.SortByUpdatedAt):
		params.SortBy = model.SortField(v)
	default:
		errs.Add("sort_by", "допустимые значения: created_at, updated_at")
	}

	switch v := q.Get("sort_order"); v {
	case "":
	case string(model.SortAsc), string(model.SortDesc):
		params.SortOrder = model.SortOrder(v)
	default:
		errs.Add("sort_order", "допустимые значения: asc, desc")
	}

	if v := q.Get("from_dt"); v != "" {
		t, err := ParseDateTime(v, loc)
		if err != nil {
			errs.Add("from_dt", "некорректная дата, ожидается YYYY-MM-DD или ISO 8601")
		} else {
			params.From = &t
		}
	}

	if v := q.Get("to_dt"); v != "" {
		t, err := ParseDateTime(v, loc)
		if err != nil {
			errs.Add("to_dt", "некорректная дата, ожидается YYYY-MM-DD или ISO 8601")
		} else {
			params.To = &t
		}
	}

	// Границы расширяются до целых суток, поэтому сравниваем календарные даты.
	if params.From != nil && params.To != nil && calendarDay(*params.To, loc) < calendarDay(*params.From, loc) {
		errs.Add("to_dt", "to_dt не может быть раньше from_dt")
	}

	if err := errs.orNil(); err != nil {
		return model.ListParams{}, err
	}
	return params, nil
}

func calendarDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// ParseDateTime разбирает дату или дату-время ISO 8601. Значения с зоной
// сохраняют её, остальные читаются в loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	var lastErr error
	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
