package handlers

import (
	"encoding/csv"
	"net/http"

	"github.com/findosh/brandsales/internal/models"
)

// DownloadTemplate serves a sample CSV template
func (h *Handler) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=brandsales_template.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write(models.CSVColumns)

	// Sample data
	writer.Write([]string{"2024/01/15", "150000", "店頭", "山田", "バッグ", "CHANEL", "A", "ショルダーバッグ", "A01112", "キャビアスキン", "1", "140000", "120000"})
	writer.Write([]string{"2024/01/20", "98000", "オークション", "佐藤", "時計", "ROLEX", "AB", "腕時計", "116610LN", "ステンレス", "1", "95000", "90000"})
}
