package sunweg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type loginRequest struct {
	Username   string `json:"usuario"`
	Password   string `json:"senha"`
	RememberMe bool   `json:"rememberMe"`
}

type loginResponse struct {
	envelope
	Token string `json:"token"`
}

type plantRef struct {
	ID scalar `json:"id"`
}

type plantListResponse struct {
	NotCommissioned []plantRef `json:"nao_comissionadas"`
	Connected       []plantRef `json:"conectadas"`
	Failures        []plantRef `json:"falhas"`
	Alerts          []plantRef `json:"alertas"`
	Attendance      []plantRef `json:"atendimento"`
	Plants          []plantRef `json:"usinas"`
}

type plantResponse struct {
	TodayEnergy       scalar `json:"energiadia"`
	TotalPower        scalar `json:"AcumuladoPotencia"`
	Saving            scalar `json:"economia"`
	TotalEnergy       scalar `json:"energiaacumuladanumber"`
	TotalCarbonSaving scalar `json:"reduz_carbono_total_number"`
	LastUpdate        scalar `json:"ultimaAtualizacao"`
	Plant             struct {
		Name      string             `json:"nome"`
		Inverters []inverterStubResp `json:"inversores"`
	} `json:"usinas"`
}

type inverterStubResp struct {
	ID          scalar `json:"id"`
	Name        string `json:"nome"`
	SN          string `json:"esn"`
	Situation   scalar `json:"situacao"`
	Temperature scalar `json:"temperatura"`
}

type inverterResponse struct {
	TotalEnergy scalar `json:"energiaacumulada"`
	TodayEnergy scalar `json:"energiadodia"`
	Power       scalar `json:"potenciaativa"`
	PowerFactor scalar `json:"fatorpotencia"`
	Frequency   scalar `json:"frequencia"`
	Status      scalar `json:"statusInversor"`
	Temperature scalar `json:"temperatura"`
	Inverter    struct {
		Name     string            `json:"nome"`
		SN       string            `json:"esn"`
		Readings map[string]scalar `json:"leitura"`
	} `json:"inversor"`
	MPPTs []struct {
		Name    string `json:"nomemppt"`
		Strings []struct {
			Name       string `json:"nome"`
			VoltageKey string `json:"variaveltensao"`
			CurrentKey string `json:"variavelcorrente"`
			Situation  scalar `json:"situacao"`
		} `json:"strings"`
	} `json:"stringmppt"`
	CurrentAC orderedScalars `json:"correnteCA"`
	VoltageAC orderedScalars `json:"tensaoca"`
}

type monthStatsResponse struct {
	Days []struct {
		Date       scalar `json:"tempoatual"`
		Production scalar `json:"energiapordia"`
		Prognostic scalar `json:"prognostico"`
	} `json:"graficomes"`
}

// scalar keeps a raw JSON string, number or null. The vendor is not
// consistent about which of those it uses for a given field.
type scalar []byte

func (s *scalar) UnmarshalJSON(b []byte) error {
	*s = append((*s)[:0], b...)
	return nil
}

func (s scalar) isNull() bool {
	return len(s) == 0 || bytes.Equal(s, []byte("null"))
}

// text returns nil for null or absent values.
func (s scalar) text() (*string, error) {
	if s.isNull() {
		return nil, nil
	}
	if s[0] == '"' {
		var v string
		if err := json.Unmarshal(s, &v); err != nil {
			return nil, err
		}
		return &v, nil
	}
	v := string(s)
	return &v, nil
}

func (s scalar) float(name string) (float64, error) {
	t, err := s.text()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if t == nil {
		return 0, missingField(name)
	}
	v, err := parseDecimal(*t)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// floatOrZero is float but null reads as 0.
func (s scalar) floatOrZero(name string) (float64, error) {
	if s.isNull() {
		return 0, nil
	}
	return s.float(name)
}

func (s scalar) int(name string) (int, error) {
	t, err := s.text()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if t == nil {
		return 0, missingField(name)
	}
	v, err := strconv.Atoi(strings.TrimSpace(*t))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// orderedScalars is a JSON object that remembers its key order.
type orderedScalars struct {
	keys   []string
	values map[string]scalar
}

func (o *orderedScalars) UnmarshalJSON(b []byte) error {
	o.keys = nil
	o.values = map[string]scalar{}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if _, seen := o.values[key]; !seen {
			o.keys = append(o.keys, key)
		}
		o.values[key] = scalar(raw)
	}
	_, err = dec.Token()
	return err
}

func (o orderedScalars) Keys() []string {
	return o.keys
}

func (o orderedScalars) get(key string) (scalar, bool) {
	v, ok := o.values[key]
	return v, ok
}
