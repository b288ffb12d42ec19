package models

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// OLSOptions represents input options to run an ordinary least squares fit.
type OLSOptions struct {
	// FitIntercept adds a constant 1.0 feature column when set.
	FitIntercept bool
}

// Validate runs basic validation on OLS options returning defaults if nil.
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		o = NewDefaultOLSOptions()
	}
	return o, nil
}

// NewDefaultOLSOptions returns a default set of OLS options.
func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// OLSRegression computes ordinary least squares using QR factorization. Kept
// as a linear baseline next to the forest model.
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
	trained   bool
}

// NewOLSRegression initializes an OLS model ready for fitting.
func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{opt: opt}, nil
}

func (o *OLSRegression) withIntercept(x mat.Matrix) mat.Matrix {
	if !o.opt.FitIntercept {
		return x
	}
	m, n := x.Dims()
	design := mat.NewDense(m, n+1, nil)
	for i := 0; i < m; i++ {
		design.Set(i, 0, 1.0)
		for j := 0; j < n; j++ {
			design.Set(i, j+1, x.At(i, j))
		}
	}
	return design
}

// Fit the model against the design matrix and the m x 1 target matrix.
func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if err := fitValidate(x, y); err != nil {
		return err
	}

	rows := matrixRows(x)
	if distinctRows(rows) < MinDistinctRows {
		return ErrInsufficientTrainingData
	}

	design := o.withIntercept(x)

	var qr mat.QR
	qr.Factorize(design)

	var c mat.Dense
	if err := qr.SolveTo(&c, false, y); err != nil {
		return err
	}

	_, n := design.Dims()
	coef := make([]float64, n)
	for i := 0; i < n; i++ {
		coef[i] = c.At(i, 0)
	}

	if o.opt.FitIntercept {
		o.intercept = coef[0]
		o.coef = coef[1:]
	} else {
		o.intercept = 0.0
		o.coef = coef
	}
	o.trained = true
	return nil
}

// Predict computes the linear prediction for each row of the design matrix.
func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if !o.trained {
		return nil, ErrUntrainedModel
	}

	m, n := x.Dims()
	if n != len(o.coef) {
		return nil, ErrFeatureLenMismatch
	}

	res := make([]float64, m)
	for i := 0; i < m; i++ {
		val := o.intercept
		for j := 0; j < n; j++ {
			val += o.coef[j] * x.At(i, j)
		}
		res[i] = val
	}
	return res, nil
}

// Score computes the coefficient of determination of the prediction against
// the target.
func (o *OLSRegression) Score(x, y mat.Matrix) (float64, error) {
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}
	res, err := o.Predict(x)
	if err != nil {
		return 0.0, err
	}
	ySlice := mat.Col(nil, 0, y)
	return stat.RSquaredFrom(res, ySlice, nil), nil
}

// Intercept returns the fitted intercept term.
func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

// Coef returns a copy of the fitted coefficients.
func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}
