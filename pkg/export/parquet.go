package export

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/kilianp07/baysim/core/model"
)

// Row is the Parquet layout of an output record.
type Row struct {
	TimeIndex    int32   `parquet:"name=time_index, type=INT32"`
	Bays         []int32 `parquet:"name=bays, type=INT32, repetitiontype=REPEATED"`
	TotalTrucks  int32   `parquet:"name=total_trucks, type=INT32"`
	TotalCars    int32   `parquet:"name=total_cars, type=INT32"`
	TotalPowerMW float64 `parquet:"name=total_power_mw, type=DOUBLE"`
	TimestepType string  `parquet:"name=timestep_type, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// ToRow converts a record.
func ToRow(r model.OutputRecord) Row {
	bays := make([]int32, len(r.Bays))
	for i, b := range r.Bays {
		bays[i] = int32(b)
	}
	return Row{
		TimeIndex:    int32(r.TimeIndex),
		Bays:         bays,
		TotalTrucks:  int32(r.TotalTrucks),
		TotalCars:    int32(r.TotalCars),
		TotalPowerMW: r.TotalPowerMW,
		TimestepType: r.TimestepType,
	}
}

// WriteParquet writes the records to a Snappy compressed Parquet file.
func WriteParquet(path string, recs []model.OutputRecord) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create local file writer: %w", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(Row), 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range recs {
		if err := pw.Write(ToRow(r)); err != nil {
			_ = fw.Close()
			return fmt.Errorf("failed to write record %d: %w", r.TimeIndex, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}
