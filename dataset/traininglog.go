package dataset

import (
	"database/sql"
	"errors"
	"time"
)

// TrainingLog is one row of the training audit table kept next to the
// dataset. Writing it is best-effort: a training run must still complete and
// persist its artifact when the database is unreachable.
type TrainingLog struct {
	ModelName  string    `json:"model_name"`
	Accuracy   float64   `json:"accuracy"`
	Precision  float64   `json:"precision"`
	Recall     float64   `json:"recall"`
	ROCAUC     float64   `json:"roc_auc"`
	TrainedAt  time.Time `json:"trained_at"`
	DataPoints int       `json:"data_points"`
}

// AppendTrainingLog records a completed training run.
func AppendTrainingLog(path string, entry TrainingLog) error {
	if path == "" {
		return errors.New("database path required")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS training_log (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            model_name VARCHAR(50),
            accuracy REAL,
            precision REAL,
            recall REAL,
            roc_auc REAL,
            trained_at DATETIME,
            data_points INTEGER
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        INSERT INTO training_log (model_name, accuracy, precision, recall, roc_auc, trained_at, data_points)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ModelName, entry.Accuracy, entry.Precision, entry.Recall, entry.ROCAUC, entry.TrainedAt, entry.DataPoints)
	return err
}

// LoadTrainingLog returns past training runs, newest first.
func LoadTrainingLog(path string) ([]TrainingLog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`
        SELECT model_name, accuracy, precision, recall, roc_auc, trained_at, data_points
        FROM training_log
        ORDER BY trained_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var entry TrainingLog
		if err := rows.Scan(&entry.ModelName, &entry.Accuracy, &entry.Precision, &entry.Recall, &entry.ROCAUC, &entry.TrainedAt, &entry.DataPoints); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
