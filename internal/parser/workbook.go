package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"yoyboard/internal/model"
)

// ErrUnsupportedFormat 不支持的文件格式
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Sheet 工作表（首个非空行为表头）
type Sheet struct {
	Name  string         `json:"name"`
	Table model.RawTable `json:"table"`
}

// Workbook 读取后的工作簿
type Workbook struct {
	Filename string  `json:"filename"`
	Sheets   []Sheet `json:"sheets"`
}

// Sheet 按名称查找工作表
func (w *Workbook) Sheet(name string) (Sheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

// OpenWorkbook 从磁盘读取工作簿
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return ReadWorkbook(f, filepath.Base(path))
}

// ReadWorkbook 按扩展名读取 .xlsx/.xlsm/.xls/.csv
func ReadWorkbook(r io.Reader, filename string) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}

	var sheets []Sheet
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer f.Close()
		sheets, err = readExcelize(f)
		if err != nil {
			return nil, err
		}
	case ".xls":
		sheets, err = readXLS(data)
		if err != nil {
			return nil, err
		}
	case ".csv":
		sheets, err = readCSV(data, filename)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}

	return &Workbook{Filename: filename, Sheets: sheets}, nil
}

// ReadExcelize 读取已打开的 excelize 工作簿（样例数据、测试直接使用）
func ReadExcelize(f *excelize.File, filename string) (*Workbook, error) {
	sheets, err := readExcelize(f)
	if err != nil {
		return nil, err
	}
	return &Workbook{Filename: filename, Sheets: sheets}, nil
}

func readExcelize(f *excelize.File) ([]Sheet, error) {
	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		// 取原始值：日期保持 Excel 序列号，金额不受单元格格式影响
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Table: toRawTable(rows)})
	}
	return sheets, nil
}

func readXLS(data []byte) ([]Sheet, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	var sheets []Sheet
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		sheets = append(sheets, Sheet{Name: ws.Name, Table: toRawTable(rows)})
	}
	return sheets, nil
}

func readCSV(data []byte, filename string) ([]Sheet, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return []Sheet{{Name: name, Table: toRawTable(rows)}}, nil
}

// toRawTable 去掉全空行，首行作为表头
func toRawTable(rows [][]string) model.RawTable {
	var table model.RawTable
	headerFound := false
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if !headerFound {
			table.Columns = make([]string, len(row))
			for i, col := range row {
				table.Columns[i] = strings.TrimSpace(col)
			}
			headerFound = true
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
