// Package output renders catalog records in the presentation forms offered
// by the lakehouse client: raw records, a table structure, JSON text and a
// fixed-width text table.
//
// The mode is a closed enumeration parsed once at the edge:
//
//	mode, err := output.ParseMode("table-text")
//	if err != nil {
//		return err
//	}
//	res, err := output.Format(records, mode)
//	if err != nil {
//		return err
//	}
//	res.WriteTo(os.Stdout)
//
// Listing helpers project records to the columns shown for collections and
// files and derive display values (dates, identities, sizes).
package output
