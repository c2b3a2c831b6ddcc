package trello

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntake_Describe(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "empty intake",
			body:     `{}`,
			expected: "Documento: -",
		},
		{
			name: "main fields",
			body: `{
				"nome": "Jane Doe",
				"documento": "S123",
				"documento_estado": "MA",
				"endereco_rua": "1 Main St",
				"endereco_apt": "Apt 2",
				"endereco_cidade": "Boston",
				"endereco_estado": "MA",
				"endereco_zipcode": "02101",
				"data_nascimento": "1990-05-15",
				"genero": "F",
				"estado_civil": "Married",
				"tempo_de_seguro": "2 years",
				"tempo_no_endereco": "5 years",
				"email": "jane@example.com"
			}`,
			expected: "Documento: S123 - MA\n" +
				"Endereço: 1 Main St, Apt 2 - Boston, MA 02101\n" +
				"Data de Nascimento: 05/15/1990\n" +
				"Gênero: F\n" +
				"Estado Civil: Married\n" +
				"Tempo de Seguro: 2 years\n" +
				"Tempo no Endereço: 5 years\n" +
				"Estado do Documento: MA\n" +
				"Email: jane@example.com",
		},
		{
			name:     "document with embedded state",
			body:     `{"documento": "S123 - NH", "email": "x@y.z"}`,
			expected: "Documento: S123 - NH\nEstado do Documento: NH\nEmail: x@y.z",
		},
		{
			name:     "generated email and city only address",
			body:     `{"nome": "Maria da Silva", "endereco_cidade": "Boston"}`,
			expected: "Documento: -\nEndereço:  - Boston\nEmail: mariadasilva@outlook.com",
		},
		{
			name: "spouse",
			body: `{"email": "a@b.c", "nome_conjuge": "John Doe", "data_nascimento_conjuge": "20/01/1988", "documento_conjuge": "D9"}`,
			expected: "Documento: -\nEmail: a@b.c\n" +
				"\nCônjuge:\nNome: John Doe\nData de Nascimento: 01/20/1988\nDocumento: D9",
		},
		{
			name: "vehicles drivers and notes",
			body: `{
				"email": "a@b.c",
				"veiculos": [
					{"vin": "1HGBH41JXMN109186", "placa": "ABC1234", "financiado": "Quitado", "tempo_com_veiculo": "1 ano", "ano": 2021, "marca": "Honda", "modelo": "Civic"},
					{}
				],
				"pessoas": [
					{"nome": "Kid Doe", "documento": "K1", "data_nascimento": "2005-02-03", "parentesco": "Filho", "genero": "M"},
					{"nome": "Other"}
				],
				"observacoes": "Call after 5pm"
			}`,
			expected: "Documento: -\nEmail: a@b.c\n" +
				"Veículos:\n" +
				"🚗 Veículo 1:\n  VIN: 1HGBH41JXMN109186\n  Placa: ABC1234\n  Veículo: 2021 Honda Civic\n  Estado: Quitado\n  Tempo com veículo: 1 ano\n" +
				"🚗 Veículo 2:\n  VIN: -\n  Placa: -\n  Veículo: -\n  Estado: -\n  Tempo com veículo: -\n" +
				"\nDrivers Adicionais:\n" +
				"\n👤 Driver 1:\n  Nome: Kid Doe\n  Documento: K1\n  Data de Nascimento: 02/03/2005\n  Parentesco: Filho\n  Gênero: M\n" +
				"\n👤 Driver 2:\n  Nome: Other\n  Documento: -\n  Data de Nascimento: -\n  Parentesco: -\n  Gênero: -\n" +
				"\nObservações:\nCall after 5pm",
		},
		{
			name:     "unrecognised date kept",
			body:     `{"email": "a@b.c", "data_nascimento": "May 1990"}`,
			expected: "Documento: -\nData de Nascimento: May 1990\nEmail: a@b.c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ParseIntake([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, in.Describe())
		})
	}
}

func TestIntake_CardName(t *testing.T) {
	tests := []struct {
		body     string
		expected string
	}{
		{`{"nome": "Jane", "name": "Other"}`, "Jane"},
		{`{"name": "Other"}`, "Other"},
		{`{}`, DefaultCardName},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			in, err := ParseIntake([]byte(tt.body))
			require.NoError(t, err)
			card := in.Card()
			assert.Equal(t, tt.expected, card.Name)
			assert.Equal(t, in.Describe(), card.Desc)
		})
	}
}

func TestParseIntake(t *testing.T) {
	in, err := ParseIntake(nil)
	require.NoError(t, err)
	assert.Equal(t, Intake{}, in)

	in, err = ParseIntake([]byte(`{"documento": 12345, "genero": null, "tempo_de_seguro": true}`))
	require.NoError(t, err)
	assert.Equal(t, Text("12345"), in.Document)
	assert.Equal(t, Text(""), in.Gender)
	assert.Equal(t, Text("true"), in.InsuranceTenure)

	_, err = ParseIntake([]byte(`{"veiculos": "many"}`))
	assert.Error(t, err)

	_, err = ParseIntake([]byte(`{"nome": ["a"]}`))
	assert.Error(t, err)
}

func TestEmailFromName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Maria da Silva", "mariadasilva@outlook.com"},
		{"Doe, J. R.", "doejr@outlook.com"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EmailFromName(tt.name))
		})
	}
}
