package wire

import (
	"github.com/jwalitptl/admin-records/pkg/coerce"
	"github.com/jwalitptl/admin-records/pkg/resolve"
)

// BPReading flattens a blood pressure sent as "120/80" or as
// {"systolic":120,"diastolic":80} into the reading string. An object without
// both numbers falls back to its "reading" key.
func BPReading(v interface{}) string {
	if obj, ok := coerce.Map(v); ok {
		sys := resolve.FloatPtr(obj, resolve.Keys("systolic", "sys")...)
		dia := resolve.FloatPtr(obj, resolve.Keys("diastolic", "dia")...)
		if sys == nil || dia == nil {
			return resolve.String(obj, "", resolve.Key("reading"))
		}
		return coerce.String(*sys) + "/" + coerce.String(*dia)
	}
	return coerce.String(v)
}
