package sizeof

import "reflect"

// ptrOf returns the backing-data pointer of a slice or map value as a
// comparable uintptr, used only to detect a value reappearing on the
// current recursion path (a cycle), never exposed outside this package.
func ptrOf(v interface{}) uintptr {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Pointer()
	default:
		return 0
	}
}
