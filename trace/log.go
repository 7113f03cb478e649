package trace

import (
	"fmt"
	"math/big"

	log "github.com/sirupsen/logrus"
)

// defaultDigits is the number of significant decimal digits printed for interval bounds.
const defaultDigits = 33

// A LogObserver narrates Steps through a logrus logger at debug level.
type LogObserver struct {
	logger log.FieldLogger
	digits int
}

// NewLogObserver returns an Observer logging to logger.
// A nil logger logs to the logrus standard logger.
func NewLogObserver(logger log.FieldLogger) *LogObserver {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LogObserver{logger: logger, digits: defaultDigits}
}

// WithDigits sets the number of significant digits printed for big.Float fields.
func (o *LogObserver) WithDigits(digits int) *LogObserver {
	if digits > 0 {
		o.digits = digits
	}
	return o
}

func (o *LogObserver) Observe(step Step) {
	fields := log.Fields{
		"stage": step.Stage.String(),
		"index": step.Index,
	}
	if step.Symbol != nil {
		fields["symbol"] = formatSymbol(step.Symbol)
	}
	o.addFloat(fields, "low", step.Low)
	o.addFloat(fields, "high", step.High)
	o.addFloat(fields, "range", step.Range)
	o.addFloat(fields, "value", step.Value)
	if step.Stage == StageHamming && step.Position > 0 {
		fields["position"] = step.Position
		fields["checked"] = fmt.Sprint(step.Checked)
		fields["bit"] = step.Bit
	}
	o.logger.WithFields(fields).Debug(step.Message)
}

func (o *LogObserver) addFloat(fields log.Fields, key string, f *big.Float) {
	if f == nil {
		return
	}
	fields[key] = f.Text('g', o.digits)
}

func formatSymbol(s interface{}) string {
	switch v := s.(type) {
	case rune:
		return fmt.Sprintf("%q", v)
	case byte:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
