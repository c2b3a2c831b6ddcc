package trello

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/autorta/rta-filler/internal/normalize"
)

// DefaultCardName is used when the intake carries no name.
const DefaultCardName = "Sem Nome"

// Text is a JSON scalar read as a string; numbers and booleans keep their literal form.
type Text string

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	if len(data) > 0 && (data[0] == '[' || data[0] == '{') {
		return fmt.Errorf("expected a scalar, got %s", data)
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*t = Text(normalize.Display(v))
	return nil
}

func (t Text) String() string { return string(t) }

func (t Text) or(fallback string) string {
	if t == "" {
		return fallback
	}
	return string(t)
}

// Vehicle is one vehicle of a client intake.
type Vehicle struct {
	VIN       Text `json:"vin"`
	Plate     Text `json:"placa"`
	Financing Text `json:"financiado"`
	Tenure    Text `json:"tempo_com_veiculo"`
	Year      Text `json:"ano"`
	Make      Text `json:"marca"`
	Model     Text `json:"modelo"`
}

// Driver is an additional driver of a client intake.
type Driver struct {
	Name         Text `json:"nome"`
	Document     Text `json:"documento"`
	BirthDate    Text `json:"data_nascimento"`
	Relationship Text `json:"parentesco"`
	Gender       Text `json:"genero"`
}

// Intake is the client intake submitted by the front office.
type Intake struct {
	Name            Text      `json:"nome"`
	AltName         Text      `json:"name"`
	Document        Text      `json:"documento"`
	DocumentState   Text      `json:"documento_estado"`
	Street          Text      `json:"endereco_rua"`
	Apt             Text      `json:"endereco_apt"`
	City            Text      `json:"endereco_cidade"`
	State           Text      `json:"endereco_estado"`
	Zipcode         Text      `json:"endereco_zipcode"`
	BirthDate       Text      `json:"data_nascimento"`
	Gender          Text      `json:"genero"`
	MaritalStatus   Text      `json:"estado_civil"`
	InsuranceTenure Text      `json:"tempo_de_seguro"`
	AddressTenure   Text      `json:"tempo_no_endereco"`
	Email           Text      `json:"email"`
	SpouseName      Text      `json:"nome_conjuge"`
	SpouseBirthDate Text      `json:"data_nascimento_conjuge"`
	SpouseDocument  Text      `json:"documento_conjuge"`
	Vehicles        []Vehicle `json:"veiculos"`
	Drivers         []Driver  `json:"pessoas"`
	Notes           Text      `json:"observacoes"`
}

// ParseIntake decodes an intake JSON body.
func ParseIntake(data []byte) (Intake, error) {
	var in Intake
	if len(bytes.TrimSpace(data)) == 0 {
		return in, nil
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return Intake{}, fmt.Errorf("invalid intake: %w", err)
	}
	return in, nil
}

// CardName is the card title.
func (in Intake) CardName() string {
	if in.Name != "" {
		return string(in.Name)
	}
	return in.AltName.or(DefaultCardName)
}

// Card builds the card for the intake.
func (in Intake) Card() Card {
	return Card{Name: in.CardName(), Desc: in.Describe()}
}

// Describe renders the card description, one labelled line per filled field.
func (in Intake) Describe() string {
	doc, docState := in.document()

	var lines []string
	if docState != "" {
		lines = append(lines, fmt.Sprintf("Documento: %s - %s", doc, docState))
	} else {
		lines = append(lines, "Documento: "+doc)
	}
	if addr := in.address(); strings.TrimSpace(addr) != "" {
		lines = append(lines, "Endereço: "+addr)
	}
	if in.BirthDate != "" {
		lines = append(lines, "Data de Nascimento: "+usDate(in.BirthDate))
	}
	if in.Gender != "" {
		lines = append(lines, "Gênero: "+string(in.Gender))
	}
	if in.MaritalStatus != "" {
		lines = append(lines, "Estado Civil: "+string(in.MaritalStatus))
	}
	if in.InsuranceTenure != "" {
		lines = append(lines, "Tempo de Seguro: "+string(in.InsuranceTenure))
	}
	if in.AddressTenure != "" {
		lines = append(lines, "Tempo no Endereço: "+string(in.AddressTenure))
	}
	if docState != "" {
		lines = append(lines, "Estado do Documento: "+docState)
	}
	if email := in.email(); email != "" {
		lines = append(lines, "Email: "+email)
	}

	if in.SpouseName != "" {
		lines = append(lines, "\nCônjuge:", "Nome: "+string(in.SpouseName))
		if in.SpouseBirthDate != "" {
			lines = append(lines, "Data de Nascimento: "+usDate(in.SpouseBirthDate))
		}
		if in.SpouseDocument != "" {
			lines = append(lines, "Documento: "+string(in.SpouseDocument))
		}
	}

	lines = append(lines, describeVehicles(in.Vehicles), describeDrivers(in.Drivers))

	if in.Notes != "" {
		lines = append(lines, "\nObservações:\n"+string(in.Notes))
	}

	out := lines[:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// document returns the document number and issuing state. A "number - state"
// document without an explicit state is split.
func (in Intake) document() (string, string) {
	doc, state := string(in.Document), string(in.DocumentState)
	if state == "" {
		if number, s, ok := normalize.SplitDocument(doc); ok {
			return number, s
		}
	}
	if doc == "" {
		doc = "-"
	}
	return doc, state
}

func (in Intake) address() string {
	addr := string(in.Street)
	if in.Apt != "" {
		addr += ", " + string(in.Apt)
	}
	var cityState []string
	for _, p := range []Text{in.City, in.State} {
		if p != "" {
			cityState = append(cityState, string(p))
		}
	}
	if len(cityState) > 0 {
		addr += " - " + strings.Join(cityState, ", ")
	}
	if in.Zipcode != "" {
		addr += " " + string(in.Zipcode)
	}
	return addr
}

func (in Intake) email() string {
	if in.Email != "" {
		return string(in.Email)
	}
	if in.Name == "" && in.AltName == "" {
		return ""
	}
	return EmailFromName(in.CardName())
}

func describeVehicles(vehicles []Vehicle) string {
	if len(vehicles) == 0 {
		return ""
	}
	lines := []string{"Veículos:"}
	for i, v := range vehicles {
		mm := strings.TrimSpace(fmt.Sprintf("%s %s %s", v.Year, v.Make, v.Model))
		if mm == "" {
			mm = "-"
		}
		lines = append(lines, fmt.Sprintf("🚗 Veículo %d:\n"+
			"  VIN: %s\n"+
			"  Placa: %s\n"+
			"  Veículo: %s\n"+
			"  Estado: %s\n"+
			"  Tempo com veículo: %s",
			i+1, v.VIN.or("-"), v.Plate.or("-"), mm, v.Financing.or("-"), v.Tenure.or("-")))
	}
	return strings.Join(lines, "\n")
}

func describeDrivers(drivers []Driver) string {
	if len(drivers) == 0 {
		return ""
	}
	lines := []string{"\nDrivers Adicionais:"}
	for i, d := range drivers {
		birth := "-"
		if d.BirthDate != "" {
			birth = usDate(d.BirthDate)
		}
		lines = append(lines, fmt.Sprintf("\n👤 Driver %d:\n"+
			"  Nome: %s\n"+
			"  Documento: %s\n"+
			"  Data de Nascimento: %s\n"+
			"  Parentesco: %s\n"+
			"  Gênero: %s",
			i+1, d.Name.or("-"), d.Document.or("-"), birth, d.Relationship.or("-"), d.Gender.or("-")))
	}
	return strings.Join(lines, "\n")
}

func usDate(t Text) string {
	return normalize.USDate(strings.TrimSpace(string(t)))
}

// EmailFromName derives a mailbox from a full name: lower case without spaces, dots or commas.
func EmailFromName(name string) string {
	if name == "" {
		return ""
	}
	user := strings.NewReplacer(" ", "", ".", "", ",", "").Replace(strings.ToLower(name))
	return user + "@outlook.com"
}
