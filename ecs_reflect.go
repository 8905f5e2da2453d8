package gekko

import (
	"reflect"
)

func reflectSliceMake(elem reflect.Type) any {
	return reflect.MakeSlice(reflect.SliceOf(elem), 0, 1).Interface()
}

func reflectSliceGet(slice any, idx int) reflect.Value {
	return reflect.ValueOf(slice).Index(idx)
}

func reflectSliceSet(slice any, idx int, val reflect.Value) {
	reflect.ValueOf(slice).Index(idx).Set(val)
}

func reflectSliceAppend(slice any, val reflect.Value) any {
	return reflect.Append(
		reflect.ValueOf(slice),
		val,
	).Interface()
}

// reflectSliceDelete removes idx keeping the order of the remaining elements.
func reflectSliceDelete(slice any, idx int) any {
	v := reflect.ValueOf(slice)
	n := v.Len()
	reflect.Copy(v.Slice(idx, n), v.Slice(idx+1, n))
	v.Index(n - 1).SetZero()
	return v.Slice(0, n-1).Interface()
}

func reflectSliceLen(slice any) int {
	return reflect.ValueOf(slice).Len()
}

// componentType strips a pointer so that T and *T name the same component.
func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
