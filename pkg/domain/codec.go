package domain

import "fmt"

// Encode serialises order into a record tagged with its registered kind.
// Encoding an unregistered variant panics with a MissingMappingError.
func Encode(reg *Registry, order WorkOrder) Record {
	kind, ok := reg.ResolveKind(order)
	if !ok {
		panic(MissingMappingError{Kind: order.Kind(), Variant: variantName(order)})
	}
	rec := Record{}
	rec.SetString(FieldKind, string(kind))
	order.base().writeRecord(rec)
	order.WriteFields(rec)
	return rec
}

// Decode rebuilds a work order from rec. It returns UnknownKindError when
// the kind is not registered and CorruptRecordError when the record cannot
// restore the variant. A panicking variant is reported as corrupt state.
func Decode(reg *Registry, rec Record) (WorkOrder, error) {
	raw, _ := rec.String(FieldKind)
	kind := Kind(raw)
	ctor, ok := reg.ResolveConstructor(kind)
	if !ok {
		return nil, UnknownKindError{Kind: kind}
	}
	order := ctor()
	if err := restore(order, rec); err != nil {
		return nil, CorruptRecordError{Kind: kind, Variant: variantName(order), Err: err}
	}
	return order, nil
}

func restore(order WorkOrder, rec Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if err := order.base().readRecord(rec); err != nil {
		return err
	}
	return order.ReadFields(rec)
}
