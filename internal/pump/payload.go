package pump

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/awiddersheim/thruk-downtimes/internal/types"
)

// Thruk external command types for scheduling downtimes.
const (
	cmdScheduleHostDowntime         = 55
	cmdScheduleServiceDowntime      = 56
	cmdScheduleHostgroupDowntime    = 84
	cmdScheduleServicegroupDowntime = 122
)

// Payload is one prepared cmd.cgi submission.
type Payload struct {
	Target string // human-readable, e.g. "host web01"
	Values url.Values
}

// RequestURL returns the full cmd.cgi URL with the payload as query string.
func (p Payload) RequestURL(base string) string {
	return base + "?" + p.Values.Encode()
}

// BuildPayloads expands every schedule that fires on now's date into one
// payload per target entry. The downtime starts at today's scheduled
// hour:minute and lasts the record's duration in minutes. Records with an
// unknown target are logged and skipped.
func BuildPayloads(downtimes []types.Downtime, now time.Time, author string, log *slog.Logger) []Payload {
	var payloads []Payload

	for _, item := range downtimes {
		for _, schedule := range item.Schedule {
			if !schedule.Matches(now) {
				continue
			}

			log.Info("Processing downtime",
				"target", item.Target,
				"host", item.Host,
				"service", item.Service,
				"hostgroup", item.Hostgroup,
				"servicegroup", item.Servicegroup,
				"backends", item.Backends,
				"duration", int(item.Duration),
				"type", schedule.Type,
				"weekDay", string(schedule.WeekDay),
				"day", int(schedule.Day),
				"hour", int(schedule.Hour),
				"minute", int(schedule.Minute),
			)

			start := time.Date(now.Year(), now.Month(), now.Day(),
				int(schedule.Hour), int(schedule.Minute), 0, 0, now.Location())
			end := start.Add(time.Duration(item.Duration) * time.Minute)

			values := url.Values{}
			values.Set("cmd_mod", "2")
			values.Set("fixed", "1")
			values.Set("com_data", item.Comment)
			values.Set("com_author", author)
			values.Set("start_time", strconv.FormatInt(start.Unix(), 10))
			values.Set("end_time", strconv.FormatInt(end.Unix(), 10))
			values.Set("childoptions", strconv.Itoa(int(item.ChildOptions)))
			values["backend"] = item.Backends

			var key string
			var targets []string
			switch item.Target {
			case "host":
				values.Set("cmd_typ", strconv.Itoa(cmdScheduleHostDowntime))
				key, targets = "host", item.Host
			case "service":
				values.Set("cmd_typ", strconv.Itoa(cmdScheduleServiceDowntime))
				values.Set("service", item.Service)
				key, targets = "host", item.Host
			case "hostgroup":
				values.Set("cmd_typ", strconv.Itoa(cmdScheduleHostgroupDowntime))
				key, targets = "hostgroup", item.Hostgroup
			case "servicegroup":
				values.Set("cmd_typ", strconv.Itoa(cmdScheduleServicegroupDowntime))
				key, targets = "servicegroup", item.Servicegroup
			default:
				log.Error("Could not process downtime with unknown target", "target", item.Target)
				continue
			}

			for _, target := range targets {
				copied := clone(values)
				copied.Set(key, target)
				payloads = append(payloads, Payload{
					Target: fmt.Sprintf("%s %s", item.Target, target),
					Values: copied,
				})
			}
		}
	}
	return payloads
}

func clone(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
