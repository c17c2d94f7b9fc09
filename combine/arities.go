package combine

func Latest2[T0, T1, R any](s0 Source[T0], s1 Source[T1], selector func(T0, T1) R) Source[R] {
	return Latest(func(values []any) R {
		return selector(
			as[T0](values[0]),
			as[T1](values[1]),
		)
	},
		erase(s0),
		erase(s1),
	)
}

func Latest3[T0, T1, T2, R any](s0 Source[T0], s1 Source[T1], s2 Source[T2], selector func(T0, T1, T2) R) Source[R] {
	return Latest(func(values []any) R {
		return selector(
			as[T0](values[0]),
			as[T1](values[1]),
			as[T2](values[2]),
		)
	},
		erase(s0),
		erase(s1),
		erase(s2),
	)
}

func Latest4[T0, T1, T2, T3, R any](s0 Source[T0], s1 Source[T1], s2 Source[T2], s3 Source[T3], selector func(T0, T1, T2, T3) R) Source[R] {
	return Latest(func(values []any) R {
		return selector(
			as[T0](values[0]),
			as[T1](values[1]),
			as[T2](values[2]),
			as[T3](values[3]),
		)
	},
		erase(s0),
		erase(s1),
		erase(s2),
		erase(s3),
	)
}

func Latest5[T0, T1, T2, T3, T4, R any](s0 Source[T0], s1 Source[T1], s2 Source[T2], s3 Source[T3], s4 Source[T4], selector func(T0, T1, T2, T3, T4) R) Source[R] {
	return Latest(func(values []any) R {
		return selector(
			as[T0](values[0]),
			as[T1](values[1]),
			as[T2](values[2]),
			as[T3](values[3]),
			as[T4](values[4]),
		)
	},
		erase(s0),
		erase(s1),
		erase(s2),
		erase(s3),
		erase(s4),
	)
}

func Latest6[T0, T1, T2, T3, T4, T5, R any](s0 Source[T0], s1 Source[T1], s2 Source[T2], s3 Source[T3], s4 Source[T4], s5 Source[T5], selector func(T0, T1, T2, T3, T4, T5) R) Source[R] {
	return Latest(func(values []any) R {
		return selector(
			as[T0](values[0]),
			as[T1](values[1]),
			as[T2](values[2]),
			as[T3](values[3]),
			as[T4](values[4]),
			as[T5](values[5]),
		)
	},
		erase(s0),
		erase(s1),
		erase(s2),
		erase(s3),
		erase(s4),
		erase(s5),
	)
}

func Latest7[T0, T1, T2, T3, T4, T5, T6, R any](s0 Source[T0], s1 Source[T1], s2 Source[T2], s3 Source[T3], s4 Source[T4], s5 Source[T5], s6 Source[T6], selector func(T0, T1, T2, T3, T4, T5, T6) R) Source[R] {
	return Latest(func(values []any) R {
		return selector(
			as[T0](values[0]),
			as[T1](values[1]),
			as[T2](values[2]),
			as[T3](values[3]),
			as[T4](values[4]),
			as[T5](values[5]),
			as[T6](values[6]),
		)
	},
		erase(s0),
		erase(s1),
		erase(s2),
		erase(s3),
		erase(s4),
		erase(s5),
		erase(s6),
	)
}

func Latest8[T0, T1, T2, T3, T4, T5, T6, T7, R any](s0 Source[T0], s1 Source[T1], s2 Source[T2], s3 Source[T3], s4 Source[T4], s5 Source[T5], s6 Source[T6], s7 Source[T7], selector func(T0, T1, T2, T3, T4, T5, T6, T7) R) Source[R] {
	return Latest(func(values []any) R {
		return selector(
			as[T0](values[0]),
			as[T1](values[1]),
			as[T2](values[2]),
			as[T3](values[3]),
			as[T4](values[4]),
			as[T5](values[5]),
			as[T6](values[6]),
			as[T7](values[7]),
		)
	},
		erase(s0),
		erase(s1),
		erase(s2),
		erase(s3),
		erase(s4),
		erase(s5),
		erase(s6),
		erase(s7),
	)
}
