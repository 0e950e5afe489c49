package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/labbridge/labbridge/internal/probe"
	"github.com/labbridge/labbridge/internal/recipients"
	"github.com/labbridge/labbridge/internal/registry"
)

// commandSource identifies the bridge in registry command audit fields.
const commandSource = "bot"

const helpText = `Commands:
/status
/list_labs
/list_sensors [lab]
/list_actuators [lab]
/turn_on <lab> <actuator>
/turn_off <lab> <actuator>
/turn_on_all <lab>
/turn_off_all <lab>
/add_lab <lab_id> "<name>" [notes]
/update_lab <lab_id> <field> <value>
/remove_lab <lab_id>
/add_sensor <lab_id> <sensor_id> <type>
/remove_sensor <sensor_id>
/add_actuator <lab_id> <actuator_id> <type>
/remove_actuator <actuator_id>
/set_threshold <lab_id> <t_low|t_high|h_low|h_high> <value>
/diag`

// Dispatcher parses one inbound command and executes it against the registry.
// Every interaction registers the chat as an alert recipient.
type Dispatcher struct {
	registry   *registry.Client
	recipients *recipients.Set
	prober     *probe.Prober // nil when the metrics probe is disabled
}

// NewDispatcher wires a Dispatcher. prober may be nil.
func NewDispatcher(rc *registry.Client, rs *recipients.Set, p *probe.Prober) *Dispatcher {
	return &Dispatcher{registry: rc, recipients: rs, prober: p}
}

// Dispatch handles one inbound message and returns the reply text.
// An empty reply means the message should be ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, chatID int64, text string) string {
	if d.recipients.Add(chatID) {
		slog.Info("new recipient registered", "chat", chatID)
	}

	parts, err := shlex.Split(strings.TrimSpace(text))
	if err != nil {
		return "Could not parse command: " + err.Error()
	}
	if len(parts) == 0 {
		return ""
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "/start", "/help":
		return helpText

	case "/status":
		st, err := d.registry.Status(ctx)
		if err != nil {
			return registryDown(err)
		}
		return FormatStatus(st)

	case "/list_labs":
		labs, err := d.registry.ListLabs(ctx)
		if err != nil {
			return registryDown(err)
		}
		return FormatLabs(labs)

	case "/list_sensors":
		if len(args) > 1 {
			return "Usage: /list_sensors [lab]"
		}
		sensors, err := d.registry.ListSensors(ctx, optional(args))
		if err != nil {
			return registryDown(err)
		}
		return FormatSensors(sensors)

	case "/list_actuators":
		if len(args) > 1 {
			return "Usage: /list_actuators [lab]"
		}
		acts, err := d.registry.ListActuators(ctx, optional(args))
		if err != nil {
			return registryDown(err)
		}
		return FormatActuators(acts)

	case "/turn_on", "/turn_off":
		if len(args) != 2 {
			return fmt.Sprintf("Usage: %s <lab> <actuator>", cmd)
		}
		return d.reply(d.registry.SendCommand(ctx, args[0], args[1], actionFor(cmd), commandSource))

	case "/turn_on_all", "/turn_off_all":
		if len(args) != 1 {
			return fmt.Sprintf("Usage: %s <lab>", cmd)
		}
		return d.bulkCommand(ctx, args[0], actionFor(cmd))

	case "/add_lab":
		if len(args) < 2 {
			return `Usage: /add_lab <lab_id> "<name>" [notes]`
		}
		notes := strings.Join(args[2:], " ")
		return d.reply(d.registry.AddLab(ctx, args[0], args[1], notes))

	case "/update_lab":
		if len(args) != 3 {
			return "Usage: /update_lab <lab_id> <field> <value>"
		}
		return d.reply(d.registry.UpdateLab(ctx, args[0], map[string]any{args[1]: args[2]}))

	case "/remove_lab":
		if len(args) != 1 {
			return "Usage: /remove_lab <lab_id>"
		}
		return d.reply(d.registry.RemoveLab(ctx, args[0]))

	case "/add_sensor":
		if len(args) != 3 {
			return "Usage: /add_sensor <lab_id> <sensor_id> <type>"
		}
		return d.reply(d.registry.AddSensor(ctx, args[0], args[1], args[2]))

	case "/remove_sensor":
		if len(args) != 1 {
			return "Usage: /remove_sensor <sensor_id>"
		}
		return d.reply(d.registry.RemoveSensor(ctx, args[0]))

	case "/add_actuator":
		if len(args) != 3 {
			return "Usage: /add_actuator <lab_id> <actuator_id> <type>"
		}
		return d.reply(d.registry.AddActuator(ctx, args[0], args[1], args[2]))

	case "/remove_actuator":
		if len(args) != 1 {
			return "Usage: /remove_actuator <actuator_id>"
		}
		return d.reply(d.registry.RemoveActuator(ctx, args[0]))

	case "/set_threshold":
		if len(args) != 3 {
			return "Usage: /set_threshold <lab_id> <t_low|t_high|h_low|h_high> <value>"
		}
		bound := args[1]
		switch bound {
		case "t_low", "t_high", "h_low", "h_high":
		default:
			return "Unknown bound " + bound + ": want t_low|t_high|h_low|h_high"
		}
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return "Value must be numeric: " + args[2]
		}
		return d.reply(d.registry.UpdateThresholds(ctx, args[0], map[string]float64{bound: v}))

	case "/diag":
		if d.prober == nil {
			return "Registry metrics probe is disabled."
		}
		sum, err := d.prober.Scrape(ctx)
		if err != nil {
			return registryDown(err)
		}
		return sum.Format()

	default:
		return "Unknown command. Use /help"
	}
}

// bulkCommand applies action to every actuator in the lab, collecting
// per-actuator errors instead of stopping at the first failure.
func (d *Dispatcher) bulkCommand(ctx context.Context, labID, action string) string {
	st, err := d.registry.Status(ctx)
	if err != nil {
		return registryDown(err)
	}

	var target *registry.Lab
	for i := range st.Labs {
		if st.Labs[i].LabID == labID {
			target = &st.Labs[i]
			break
		}
	}
	if target == nil {
		return "Lab not found."
	}

	var errs []string
	for _, act := range target.Actuators {
		res, err := d.registry.SendCommand(ctx, labID, act.ActuatorID, action, commandSource)
		switch {
		case err != nil:
			errs = append(errs, act.ActuatorID+": "+err.Error())
		case !res.OK:
			errs = append(errs, act.ActuatorID+": "+orUnknown(res.Error))
		}
	}
	if len(errs) > 0 {
		return strings.Join(errs, "\n")
	}
	return "Done."
}

// reply collapses a registry mutation outcome into operator-facing text.
func (d *Dispatcher) reply(res *registry.Result, err error) string {
	if err != nil {
		return registryDown(err)
	}
	if !res.OK {
		return "Error: " + orUnknown(res.Error)
	}
	return "OK"
}

func actionFor(cmd string) string {
	if strings.HasPrefix(cmd, "/turn_on") {
		return "ON"
	}
	return "OFF"
}

func optional(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return ""
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func registryDown(err error) string {
	slog.Warn("registry call failed", "err", err)
	return "Error: registry unreachable"
}
