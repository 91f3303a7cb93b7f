package importer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

var monthNames = []string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// BuildTemplate renders the model workbook for one import kind. Owner
// dependent templates (shares, rentledger) take the registered owner names
// so every owner gets a pre-labelled column.
func BuildTemplate(kind string, ownerNames []string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	switch kind {
	case "owners":
		buildHeaderSheet(f, "Proprietarios", []string{
			"Nome", "Sobrenome", "Documento", "Tipo Documento", "Endereço", "Telefone", "Email",
		})
	case "properties":
		buildHeaderSheet(f, "Imoveis", []string{
			"Nome", "Endereço", "Tipo", "Área Total", "Área Construída",
			"Valor Catastral", "Valor Mercado", "IPTU Anual", "Condomínio",
		})
	case "shares":
		headers := []string{"Nome", "Endereço", "VALOR"}
		headers = append(headers, ownerNames...)
		buildHeaderSheet(f, "Participacoes", headers)
	case "rentledger":
		buildRentTemplate(f, ownerNames)
	default:
		return nil, fmt.Errorf("unknown template kind %q", kind)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func buildHeaderSheet(f *excelize.File, name string, headers []string) {
	f.SetSheetName("Sheet1", name)
	for i, h := range headers {
		cellRef, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellStr(name, cellRef, h)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(name, "A1", last, style)
	}
}

// buildRentTemplate lays out one sheet per month of the current year. Row 1
// carries the period marker in A1, row 2 the column headers, rows 3 onward
// are for data.
func buildRentTemplate(f *excelize.File, ownerNames []string) {
	headers := []string{"Imóvel / Endereço", "Valor Total"}
	headers = append(headers, ownerNames...)
	headers = append(headers, "Taxa Administração")

	year := time.Now().Year()
	for m := 1; m <= 12; m++ {
		name := fmt.Sprintf("%s %d", monthNames[m-1], year)
		if m == 1 {
			f.SetSheetName("Sheet1", name)
		} else {
			f.NewSheet(name)
		}
		f.SetCellStr(name, "A1", fmt.Sprintf("01/%02d/%d", m, year))
		for i, h := range headers {
			cellRef, _ := excelize.CoordinatesToCellName(i+1, 2)
			f.SetCellStr(name, cellRef, h)
		}
	}
}
