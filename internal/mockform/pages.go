package mockform

// Pages mirror the markup the automation's locators expect: the same
// aria labels, date placeholder, submit button attribute, and success
// marker class as the hosted form.

const loginHTML = `<!DOCTYPE html>
<html>
<head><title>Sign In</title></head>
<body>
  <form method="POST" action="/login">
    <input id="loginEmail" name="email" type="email" placeholder="Email">
    <input id="passwordInput" name="password" type="password" placeholder="Password">
    <button id="formControl" type="submit">Continue</button>
  </form>
</body>
</html>`

const formHTML = `<!DOCTYPE html>
<html>
<head><title>Timesheet Entry</title></head>
<body>
  <form id="timesheet-form" data-form-id="%s">
    <input aria-label="Project" name="project_code" type="text">
    <input placeholder="mm/dd/yyyy" name="date" type="text">
    <input aria-label="Hours" name="hours" type="text">
    <input aria-label="Tool" name="tool" type="text">
    <textarea role="textbox" name="task_description" aria-label="Task Description"></textarea>
    <input aria-label="Detail Charge Code" name="detail_code" type="text">
    <button type="submit" data-client-id="form_submit_btn">Submit</button>
  </form>
  <script>
    document.getElementById('timesheet-form').addEventListener('submit', function (e) {
      e.preventDefault();
      var data = {};
      new FormData(this).forEach(function (value, key) { data[key] = value; });
      var formID = this.getAttribute('data-form-id');
      fetch('/api/submit/' + formID, {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify(data)
      }).then(function () {
        window.location.href = '/b/form/' + formID + '/success';
      });
    });
  </script>
</body>
</html>`

const successHTML = `<!DOCTYPE html>
<html>
<head><title>Submission Complete</title></head>
<body>
  <div class="submission-success">Thank you! Your submission was received.</div>
  <a href="javascript:history.back()">Submit another response</a>
</body>
</html>`
